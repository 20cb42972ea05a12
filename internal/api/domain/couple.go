package domain

import "time"

// Couple is a pairing record between two users. It is created when an
// invitation is sent (partner2 unset) and becomes established once the
// invited party accepts.
type Couple struct {
	ID            string
	Partner1ID    string // the inviter, always present
	Partner2ID    *string
	CreatedAt     time.Time
	EstablishedAt *time.Time // set when partner2 is bound
}

// Established reports whether both partner slots are bound.
func (c Couple) Established() bool {
	return c.Partner2ID != nil
}

// PartnerOf returns the id of the other partner, or "" if the couple is not
// established or userID is not part of it.
func (c Couple) PartnerOf(userID string) string {
	if !c.Established() {
		return ""
	}
	switch userID {
	case c.Partner1ID:
		return *c.Partner2ID
	case *c.Partner2ID:
		return c.Partner1ID
	}
	return ""
}
