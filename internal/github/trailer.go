package github

import "fmt"

// NoReplyEmail returns the noreply address GitHub assigns to a user.
func NoReplyEmail(id int64, login string) string {
	return fmt.Sprintf("%d+%s@users.noreply.github.com", id, login)
}

// TrailerLine renders the git commit trailer for a resolved co-author.
// name is the display name the user entered, not the profile name.
func TrailerLine(name string, id int64, login string) string {
	return fmt.Sprintf("Co-authored-by: %s <%s>", name, NoReplyEmail(id, login))
}

// Trailer renders the trailer line for this profile with the given display name.
func (p *Profile) Trailer(name string) string {
	return TrailerLine(name, p.ID, p.Login)
}
