package models

import "encoding/json"

// ContactList is the ordered set of supporter IDs assigned to an emergency.
// Some historical backend rows stored the list as a JSON-encoded string, so
// decoding accepts either representation; anything unparseable decodes to an
// empty list rather than failing the whole record.
type ContactList []string

func (c *ContactList) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err == nil {
		*c = ids
		return nil
	}

	var encoded string
	if err := json.Unmarshal(data, &encoded); err == nil {
		var inner []string
		if err := json.Unmarshal([]byte(encoded), &inner); err == nil {
			*c = inner
			return nil
		}
	}

	*c = ContactList{}
	return nil
}

// Contains reports whether the supporter ID is already assigned.
func (c ContactList) Contains(supporterID string) bool {
	for _, id := range c {
		if id == supporterID {
			return true
		}
	}
	return false
}

// Add appends the supporter ID if absent and reports whether it was added.
func (c ContactList) Add(supporterID string) (ContactList, bool) {
	if c.Contains(supporterID) {
		return c, false
	}
	return append(c, supporterID), true
}

// Remove filters the supporter ID out of the list.
func (c ContactList) Remove(supporterID string) ContactList {
	out := make(ContactList, 0, len(c))
	for _, id := range c {
		if id != supporterID {
			out = append(out, id)
		}
	}
	return out
}

// Dedupe drops duplicate IDs while preserving first-seen order.
func (c ContactList) Dedupe() ContactList {
	seen := make(map[string]bool, len(c))
	out := make(ContactList, 0, len(c))
	for _, id := range c {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
