package identity

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/anchal00/blackjack/internal/db"
	"github.com/anchal00/blackjack/internal/logger"
)

const (
	InitDataHeader    = "X-Telegram-Init-Data"
	DevUserIDHeader   = "X-Dev-User-Id"
	DevNameHeader     = "X-Dev-Name"
	DevUsernameHeader = "X-Dev-Username"
)

type AccountStore interface {
	EnsureAccount(participantID, username, firstName string) (*db.Account, error)
}

// Resolver turns the credentials on a request into an Identity and makes sure
// the participant has an account.
type Resolver struct {
	verifier *TelegramVerifier
	tokens   *Tokens
	accounts AccountStore
	// devBypass accepts the X-Dev-* headers and the devUserId query parameter.
	devBypass bool
	log       logger.Logger
}

func NewResolver(verifier *TelegramVerifier, tokens *Tokens, accounts AccountStore, devBypass bool, log logger.Logger) *Resolver {
	return &Resolver{verifier: verifier, tokens: tokens, accounts: accounts, devBypass: devBypass, log: log}
}

func (r *Resolver) Tokens() *Tokens {
	return r.tokens
}

func (r *Resolver) resolve(req *http.Request) (Identity, error) {
	query := req.URL.Query()
	if bearer, ok := strings.CutPrefix(req.Header.Get("Authorization"), "Bearer "); ok {
		return r.tokens.Parse(strings.TrimSpace(bearer))
	}
	if token := query.Get("token"); len(token) != 0 {
		return r.tokens.Parse(token)
	}
	if r.devBypass {
		if id := req.Header.Get(DevUserIDHeader); len(id) != 0 {
			return Identity{
				ParticipantID: id,
				FirstName:     orDefault(req.Header.Get(DevNameHeader), "DevUser"),
				Username:      orDefault(req.Header.Get(DevUsernameHeader), "devuser"),
			}, nil
		}
		if id := query.Get("devUserId"); len(id) != 0 {
			return Identity{ParticipantID: id, FirstName: "DevUser", Username: "devuser"}, nil
		}
	}
	initData := req.Header.Get(InitDataHeader)
	if len(initData) == 0 {
		initData = query.Get("initData")
	}
	return r.verifier.Verify(initData)
}

// Resolve authenticates req and upserts the participant's account.
func (r *Resolver) Resolve(req *http.Request) (Identity, error) {
	id, err := r.resolve(req)
	if err != nil {
		r.log.Debug(fmt.Sprintf("Rejected credentials from %s: %v", req.RemoteAddr, err))
		return Identity{}, err
	}
	if _, err := r.accounts.EnsureAccount(id.ParticipantID, id.Username, id.FirstName); err != nil {
		return Identity{}, fmt.Errorf("ensure account for %s: %w", id.ParticipantID, err)
	}
	return id, nil
}

func orDefault(v, fallback string) string {
	if len(v) == 0 {
		return fallback
	}
	return v
}
