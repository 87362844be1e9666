package roster

// SlotKey is the fixed name of the persistence slot holding the roster.
// The stored value is the JSON-serialized ordered list of entries and must
// round-trip exactly.
const SlotKey = "Co-author Generator(GitHub)"

// Entry is one saved co-author: a GitHub username plus the display name used
// in the rendered trailer line. Username is the identity key.
type Entry struct {
	Username string `json:"username"`
	Name     string `json:"name"`
}

// Add returns list with e appended. Any existing entry with the same username
// is dropped first, so re-adding moves the entry to the end and takes the new
// display name. The input slice is not modified.
func Add(list []Entry, e Entry) []Entry {
	out := make([]Entry, 0, len(list)+1)
	for _, cur := range list {
		if cur.Username != e.Username {
			out = append(out, cur)
		}
	}
	return append(out, e)
}

// Remove returns list without the entry for username. Removing an absent
// username is a no-op. The input slice is not modified.
func Remove(list []Entry, username string) []Entry {
	out := make([]Entry, 0, len(list))
	for _, cur := range list {
		if cur.Username != username {
			out = append(out, cur)
		}
	}
	return out
}

// Contains reports whether list holds an entry for username.
func Contains(list []Entry, username string) bool {
	for _, cur := range list {
		if cur.Username == username {
			return true
		}
	}
	return false
}
