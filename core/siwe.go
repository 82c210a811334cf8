package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const siweHeaderSuffix = " wants you to sign in with your Ethereum account:"

// SignInMessage is the structured form of an EIP-4361 sign-in message.
type SignInMessage struct {
	Domain    string
	Address   string
	Statement string
	URI       string
	Version   string
	ChainID   int64
	Nonce     string
	IssuedAt  time.Time
}

// String renders the message in its canonical text form. The rendered bytes
// are exactly what the wallet signs.
func (m *SignInMessage) String() string {
	var b strings.Builder
	b.WriteString(m.Domain)
	b.WriteString(siweHeaderSuffix)
	b.WriteString("\n")
	b.WriteString(m.Address)
	b.WriteString("\n\n")
	if m.Statement != "" {
		b.WriteString(m.Statement)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "URI: %s\n", m.URI)
	fmt.Fprintf(&b, "Version: %s\n", m.Version)
	fmt.Fprintf(&b, "Chain ID: %d\n", m.ChainID)
	fmt.Fprintf(&b, "Nonce: %s\n", m.Nonce)
	fmt.Fprintf(&b, "Issued At: %s", m.IssuedAt.UTC().Format(time.RFC3339))
	return b.String()
}

// ParseSignInMessage parses the canonical text form back into its fields.
// Missing domain, address, nonce, issued-at or chain id makes the message
// malformed.
func ParseSignInMessage(raw string) (*SignInMessage, error) {
	lines := strings.Split(raw, "\n")
	if len(lines) < 2 {
		return nil, ErrMalformedMessage
	}

	header := lines[0]
	if !strings.HasSuffix(header, siweHeaderSuffix) {
		return nil, ErrMalformedMessage
	}

	msg := &SignInMessage{
		Domain:  strings.TrimSuffix(header, siweHeaderSuffix),
		Address: strings.TrimSpace(lines[1]),
	}
	if msg.Domain == "" || msg.Address == "" {
		return nil, ErrMalformedMessage
	}

	var statement []string
	var chainIDSeen, issuedAtSeen bool
	for _, line := range lines[2:] {
		switch {
		case strings.HasPrefix(line, "URI: "):
			msg.URI = strings.TrimPrefix(line, "URI: ")
		case strings.HasPrefix(line, "Version: "):
			msg.Version = strings.TrimPrefix(line, "Version: ")
		case strings.HasPrefix(line, "Chain ID: "):
			id, err := strconv.ParseInt(strings.TrimPrefix(line, "Chain ID: "), 10, 64)
			if err != nil {
				return nil, ErrMalformedMessage
			}
			msg.ChainID = id
			chainIDSeen = true
		case strings.HasPrefix(line, "Nonce: "):
			msg.Nonce = strings.TrimPrefix(line, "Nonce: ")
		case strings.HasPrefix(line, "Issued At: "):
			ts, err := time.Parse(time.RFC3339, strings.TrimPrefix(line, "Issued At: "))
			if err != nil {
				return nil, ErrMalformedMessage
			}
			msg.IssuedAt = ts
			issuedAtSeen = true
		case strings.TrimSpace(line) != "":
			statement = append(statement, line)
		}
	}
	msg.Statement = strings.Join(statement, "\n")

	if msg.Nonce == "" || !chainIDSeen || !issuedAtSeen {
		return nil, ErrMalformedMessage
	}
	return msg, nil
}
