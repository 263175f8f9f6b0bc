package model

// DefaultIMAPHost is used when a mail configuration omits the server.
const DefaultIMAPHost = "imap.qq.com:993"

// MailConfig is the single stored mailbox configuration. Password is the
// account secret (usually an app-specific authorization code) and is never
// returned by the read-back API; see MailConfigView.
type MailConfig struct {
	Email     string `json:"email" firestore:"email"`
	Password  string `json:"password" firestore:"password"`
	IMAPHost  string `json:"imapHost" firestore:"imapHost"`
	UpdatedAt int64  `json:"updatedAt" firestore:"updatedAt"`
}

// Configured reports whether enough is set to open a session.
func (c *MailConfig) Configured() bool {
	return c != nil && c.Email != "" && c.Password != ""
}

// WithDefaults returns a copy with an empty host replaced by DefaultIMAPHost.
func (c MailConfig) WithDefaults(defaultHost string) MailConfig {
	if c.IMAPHost == "" {
		if defaultHost == "" {
			defaultHost = DefaultIMAPHost
		}
		c.IMAPHost = defaultHost
	}
	return c
}

// MailConfigView is the read-back shape of MailConfig.
type MailConfigView struct {
	Email      string `json:"email"`
	IMAPHost   string `json:"imapHost"`
	Configured bool   `json:"configured"`
}

// View strips the secret.
func (c *MailConfig) View() MailConfigView {
	if c == nil {
		return MailConfigView{}
	}
	return MailConfigView{Email: c.Email, IMAPHost: c.IMAPHost, Configured: c.Configured()}
}
