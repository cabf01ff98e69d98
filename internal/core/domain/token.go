package domain

import "time"

type TokenKind string

const (
	TokenKindInvite  TokenKind = "invite"
	TokenKindSession TokenKind = "session"
)

// Token backs either a single-use invite link or a long-lived session cookie.
// The secret is the credential presented by clients; it never appears in
// role-scoped state snapshots.
type Token struct {
	ID        string    `json:"id"`
	Kind      TokenKind `json:"kind"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	Secret    string    `json:"secret"`
	CreatedAt time.Time `json:"createdAt"`
}

// TokenInfo is the redacted token view exposed in state snapshots.
type TokenInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

func (t *Token) Info() TokenInfo {
	return TokenInfo{ID: t.ID, Name: t.Name, Role: t.Role}
}
