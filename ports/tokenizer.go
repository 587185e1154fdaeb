package ports

import "github.com/adawatch/charon/core"

// Tokenizer converts between sessions and opaque token strings
type Tokenizer interface {
	SessionToToken(session *core.Session) (string, error)
	TokenToSession(token string) (*core.Session, error)
}
