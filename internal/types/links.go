package types

import "strings"

// LinkMap maps a platform to the profile URL classified for it.
// An empty string means the platform is absent.
type LinkMap struct {
	LinkedIn  string `json:"linkedin,omitempty"`
	GitHub    string `json:"github,omitempty"`
	Portfolio string `json:"portfolio,omitempty"`
	Blog      string `json:"blog,omitempty"`
	Resume    string `json:"resume,omitempty"`
}

// LinkEntry is one non-empty platform link with its display label.
type LinkEntry struct {
	Key   string
	Label string
	URL   string
}

// IsEmpty reports whether no platform has a link.
func (m LinkMap) IsEmpty() bool {
	return len(m.Entries()) == 0
}

// Entries returns the non-empty links in a fixed order: resume, linkedin, github, portfolio, blog.
func (m LinkMap) Entries() []LinkEntry {
	all := []LinkEntry{
		{Key: "resume", Label: "Resume", URL: m.Resume},
		{Key: "linkedin", Label: "LinkedIn", URL: m.LinkedIn},
		{Key: "github", Label: "GitHub", URL: m.GitHub},
		{Key: "portfolio", Label: "Portfolio", URL: m.Portfolio},
		{Key: "blog", Label: "Blog", URL: m.Blog},
	}
	entries := make([]LinkEntry, 0, len(all))
	for _, e := range all {
		if strings.TrimSpace(e.URL) != "" {
			entries = append(entries, e)
		}
	}
	return entries
}

// Merge returns a copy of m where every empty field is taken from other.
func (m LinkMap) Merge(other LinkMap) LinkMap {
	pick := func(a, b string) string {
		if a != "" {
			return a
		}
		return b
	}
	return LinkMap{
		LinkedIn:  pick(m.LinkedIn, other.LinkedIn),
		GitHub:    pick(m.GitHub, other.GitHub),
		Portfolio: pick(m.Portfolio, other.Portfolio),
		Blog:      pick(m.Blog, other.Blog),
		Resume:    pick(m.Resume, other.Resume),
	}
}
