package config

import (
	"log/slog"

	"github.com/zalando/go-keyring"
)

// SecretGetter reads a password for user from a credential store.
type SecretGetter func(service, user string) (string, error)

// KeyringGetter reads passwords from the OS keyring.
var KeyringGetter SecretGetter = keyring.Get

// LoadSecrets fills passwords that were not given in the environment from
// the credential store, keyed by user name. A missing entry is not an error:
// the server may accept anonymous access.
func (s *Settings) LoadSecrets(get SecretGetter) {
	lookup := func(user string, dst *string) {
		if user == "" || *dst != "" {
			return
		}
		p, err := get(KeyringService, user)
		if err != nil {
			slog.Debug(MsgPassFail,
				LogKeyComponent, CompConfig,
				LogKeyUser, user,
				LogKeyError, err,
			)
			return
		}
		*dst = p
	}
	lookup(s.Directory.User, &s.Directory.Password)
	lookup(s.CalDAV.User, &s.CalDAV.Password)
}
