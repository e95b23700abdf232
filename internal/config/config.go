package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP clients (directory fetcher, CalDAV publisher).
var UserAgent = "Go-QuickEvent/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go QuickEvent"
	AppID             = "com.github.tartampluch.go-quickevent"
	KeyringService    = "com.github.tartampluch.go-quickevent"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	EnvPrefix         = "QUICKEVENT_"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Commands, Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	CmdParse   = "parse"
	CmdServe   = "serve"
	CmdVersion = "version"

	FlagConfig  = "config"
	FlagDebug   = "debug"
	FlagICS     = "ics"
	FlagTree    = "tree"
	FlagPublish = "publish"
	FlagPort    = "port"

	FlagDescConfig  = "Path to a YAML settings file"
	FlagDescDebug   = "Enable debug logging"
	FlagDescICS     = "Print the event as iCalendar instead of JSON"
	FlagDescTree    = "Treat the argument as a pre-chunked bracketed tree"
	FlagDescPublish = "Push the resolved event to the configured CalDAV calendar"
	FlagDescPort    = "Port to listen on"

	UsageApp     = "Turn short free-text messages into scheduled events."
	UsageParse   = "Resolve a single message and print the event"
	UsageServe   = "Serve the resolver over HTTP"
	UsageVersion = "Show application version and exit"
	ArgsParse    = "MESSAGE"

	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// Tree Labels & Tags
// -----------------------------------------------------------------------------

const (
	LabelRoot         = "S"
	LabelDate         = "DATE"
	LabelTime         = "TIME"
	LabelPlace        = "PLACE"
	LabelPerson       = "PERSON"
	LabelOrganization = "ORGANIZATION"
	LabelFacility     = "FACILITY"
	LabelGPE          = "GPE"
	LabelJunk         = "JUNK"

	TagNumDate     = "NUM_DATE"
	TagCardinal    = "CD"
	TagAdjective   = "JJ"
	TagPreposition = "IN"
	TagNoun        = "NN"
	TagNounPlural  = "NNS"
	TagProperNoun  = "NNP"
)

// -----------------------------------------------------------------------------
// Resolution Defaults
// -----------------------------------------------------------------------------

const (
	// DefaultHour and DefaultMinute form the time used when a message has no time signal.
	DefaultHour   = 10
	DefaultMinute = 0

	// WorkingHoursCutoff: meridiem-less hours below it are read as afternoon
	// when the event falls on a later day.
	WorkingHoursCutoff = 6

	HoursPerMeridiem = 12
	DaysPerWeek      = 7
	CenturyPrefix    = 2000 // Two-digit years are read as 20YY

	DefaultEventDuration = 1 * time.Hour
	MaxFeedEvents        = 200

	// Output layouts of the event record.
	RecordDateLayout = "02, Jan 2006"
	RecordTimeLayout = "15:04"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	ICalVersion  = "2.0"
	ICalProdid   = "-//Go QuickEvent//Engine//EN"
	ICalCalName  = "QuickEvent"
	ICalMethod   = "PUBLISH"
	ICalScale    = "GREGORIAN"
	ICalExt      = ".ics"
	ICalMailto   = "mailto:"
	ICalParamCN  = "CN"
	ICalUIDSpace = "go-quickevent-v1"

	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTEnd       = "DTEND"
	PropDTStamp     = "DTSTAMP"
	PropLocation    = "LOCATION"
	PropAttendee    = "ATTENDEE"
	PropDescription = "DESCRIPTION"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	VCardFN    = "FN"
	VCardN     = "N"
	VCardEmail = "EMAIL"

	LocationSeparator = ", "
	FallbackSummary   = "Event"

	// StubVCalendar is the minimal valid iCalendar object served when no events exist yet.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:" + ICalVersion + "\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"
)

// -----------------------------------------------------------------------------
// Directory Source Modes
// -----------------------------------------------------------------------------

const (
	SourceModeNone  = ""
	SourceModeWeb   = "web"
	SourceModeLocal = "local"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	DefaultPort         = "18080"
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethodsRoot  = "POST"
	AllowedMethodsFeed  = "GET, HEAD"
	MaxHTTPResponseSize = 64 * 1024 * 1024 // 64MB
	MaxRequestBodySize  = 64 * 1024
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	RouteRoot           = "/"
	RouteFeed           = "/calendar.ics"
	RouteMetrics        = "/metrics"
	AddrSeparator       = ":"
	FormFieldMessage    = "message"
	FormFieldTree       = "tree"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"
	HeaderAcceptLanguage  = "Accept-Language"
	HeaderAccept          = "Accept"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json"
	MimeNoSniff         = "nosniff"
	MimeVCard           = "text/vcard, text/x-vcard;q=0.9, */*;q=0.1"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Metrics
// -----------------------------------------------------------------------------

const (
	MetricsNamespace     = "quickevent"
	MetricResolutions    = "resolutions_total"
	MetricDuration       = "resolution_duration_seconds"
	MetricHelpResolution = "Messages resolved, by outcome"
	MetricHelpDuration   = "Time spent resolving a message"
	MetricLabelOutcome   = "outcome"

	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyErrMessageRequired = "err_message_required"
	TKeyErrAmbiguous       = "err_ambiguous_input"
	TKeyErrInvalid         = "err_invalid_input"
	TKeyErrInternal        = "err_internal"
	TKeyErrMethod          = "err_method_not_allowed"
	TKeyFeedInitializing   = "feed_initializing"
	DefaultLanguage        = "en"
)

// SupportedLanguages defines the list of available message languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrAmbiguousInput   = "ambiguous input"
	ErrInvalidInput     = "invalid input"
	ErrManyNumDates     = "more than one numeric date in a date span"
	ErrManyDayMarkers   = "more than one day-of-month marker in a date span"
	ErrBothMeridiems    = "time is both before and after noon"
	ErrMorningOver12    = "time is before noon however hours > 12"
	ErrBadCalendarDate  = "no such calendar date"
	ErrBadClockTime     = "no such clock time"
	ErrProducerMissing  = "internal error: tree producer is not initialized"
	ErrTagAndChunk      = "failed to tag and chunk message"
	ErrEmptyMessage     = "message is empty"
	ErrTreeSyntax       = "malformed bracketed tree"
	ErrGrammarSyntax    = "malformed chunk grammar"
	ErrGrammarPattern   = "invalid chunk pattern"
	ErrLocalPathEmpty   = "configuration error: local path is empty"
	ErrWebURLEmpty      = "configuration error: web URL is empty"
	ErrFetcherMissing   = "internal error: network fetcher is not initialized"
	ErrModeUnsupport    = "configuration error: unsupported source mode"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrPortRequired     = "server port is required"
	ErrInvalidURL       = "invalid URL structure"
	ErrProtocol         = "unsupported protocol scheme (http/https only)"
	ErrFetchRequest     = "failed to build address book request"
	ErrFetchNetwork     = "address book download failed"
	ErrFetchStatus      = "address book server answered"
	ErrVCardParse       = "failed to parse vCard stream"
	ErrVCardRead        = "address book stream failed"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrConfigRead       = "failed to read settings file"
	ErrConfigParse      = "failed to parse settings file"
	ErrLogFile          = "failed to open log file"
	ErrCacheDir         = "could not determine user cache dir"
	ErrCreateDir        = "could not create app cache dir"
	ErrAppFailed        = "application failed unexpectedly"
	ErrWriteResp        = "failed to write response body"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrCalDAVClient     = "failed to create caldav client"
	ErrCalDAVDiscover   = "could not find calendar"
	ErrCalDAVPut        = "failed to create event on CalDAV server"
	ErrPublisherMissing = "configuration error: CalDAV publishing is not configured"
	ErrNLPInit          = "failed to initialise NLP pipeline"
	ErrMissingArgument  = "a message argument is required"
)

// -----------------------------------------------------------------------------
// Log Messages
// -----------------------------------------------------------------------------

const (
	MsgAppStarting    = "Starting application"
	MsgAppStop        = "Application stopped gracefully"
	MsgLogWarning     = "Warning: %s at %s: %v\n"
	MsgResolveStarted = "Resolving message"
	MsgResolved       = "Message resolved"
	MsgRejected       = "Message rejected"
	MsgDateRule       = "Date rule matched"
	MsgDateDefault    = "No date signal, defaulting"
	MsgTimeDefault    = "No time signal, defaulting"
	MsgBothDefault    = "No date or time signal, scheduling for tomorrow"
	MsgDayShift       = "Time rolled over, shifting date"
	MsgExtraSpans     = "Ignoring additional spans"
	MsgServerListen   = "HTTP server listening"
	MsgServerStop     = "Shutting down HTTP server..."
	MsgCacheUpdated   = "Calendar cache updated"
	MsgSkippedCard    = "Skipping malformed vCard"
	MsgDirLoaded      = "Contact directory loaded"
	MsgDirDownloading = "vCards downloading"
	MsgDirRefused     = "Address book server refused the request"
	MsgLocaleSkip     = "Skipping non-locale file"
	MsgLocaleBadName  = "Skipping malformed locale filename"
	MsgLocaleLoaded   = "Locale loaded successfully"
	MsgTransMissing   = "Missing translation key"
	MsgPassFail       = "Password retrieval failed (might be empty)"
	MsgCalDAVFind     = "Finding CalDAV calendar"
	MsgCalDAVFound    = "Successfully found CalDAV calendar"
	MsgPublished      = "Event published to CalDAV calendar"
	MsgPublishFailed  = "Publishing event failed"
	MsgNLPReady       = "NLP pipeline ready"
	MsgGrammarLoaded  = "Chunk grammar loaded"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyMode      = "mode"
	LogKeyUser      = "user"
	LogKeyCount     = "count"
	LogKeyName      = "name"
	LogKeyRule      = "rule"
	LogKeyLabel     = "label"
	LogKeyDate      = "date"
	LogKeyTime      = "time"
	LogKeyDays      = "days"
	LogKeyAction    = "action"
	LogKeyTree      = "tree"
	LogKeyUID       = "uid"
	LogKeyStages    = "stages"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyDuration  = "duration_ms"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompEngine    = "engine"
	CompServer    = "server"
	CompFetcher   = "fetcher"
	CompDirectory = "directory"
	CompNLP       = "nlp"
	CompPublish   = "publish"
	CompMain      = "main"
	CompI18n      = "i18n"
	CompConfig    = "config"
)
