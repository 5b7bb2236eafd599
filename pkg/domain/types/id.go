package types

// CaseID is the unique CRM identifier of a case record.
type CaseID string

// String returns the string representation of the case ID
func (id CaseID) String() string {
	return string(id)
}

// CRM record identifiers carry a fixed 3-character key prefix that encodes
// the object type. User and group records are the only ones this service
// resolves by name.
const (
	userIDPrefix  = "005"
	groupIDPrefix = "00G"
)

// RecordRef is a raw CRM reference value. It may be an identifier or a
// plain display name depending on which field it came from.
type RecordRef string

// String returns the string representation of the record reference
func (r RecordRef) String() string {
	return string(r)
}

// IsUserID reports whether the value is shaped like a user identifier.
func (r RecordRef) IsUserID() bool {
	return r.looksLikeID() && string(r)[:3] == userIDPrefix
}

// IsGroupID reports whether the value is shaped like a group (queue)
// identifier.
func (r RecordRef) IsGroupID() bool {
	return r.looksLikeID() && string(r)[:3] == groupIDPrefix
}

// looksLikeID reports whether the value is shaped like an identifier: a
// 3-character key prefix followed by an alphanumeric payload. Display
// names carry spaces or punctuation and fail the payload check.
func (r RecordRef) looksLikeID() bool {
	if len(r) <= 3 {
		return false
	}
	for _, c := range r {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		default:
			return false
		}
	}
	return true
}
