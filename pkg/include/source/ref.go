package source

import "strings"

// Scheme is the kind of store a reference points into.
type Scheme string

const (
	SchemeRemote     Scheme = "remote"
	SchemePage       Scheme = "page"
	SchemeRepository Scheme = "repository"
	SchemeTicket     Scheme = "ticket"
)

// Ref is a parsed source reference.
type Ref struct {
	Scheme Scheme
	// Realm is the prefix as written before the first colon ("wiki" for
	// bare page names).
	Realm string
	// Locator is the full URL for remote references and the part after the
	// realm otherwise, without any version suffix.
	Locator string
	// Version is the page version or repository revision after "@".
	Version string
	// ContentType is the requested content type, empty when unspecified.
	ContentType string
}

// String renders the reference back into directive form.
func (r Ref) String() string {
	if r.Scheme == SchemeRemote {
		return r.Locator
	}
	s := r.Realm + ":" + r.Locator
	if r.Version != "" {
		s += "@" + r.Version
	}
	return s
}

// Parse parses src. A reference without a colon names a wiki page.
func Parse(src string) (Ref, error) {
	realm, rest, found := strings.Cut(src, ":")
	if !found {
		name, version := SplitVersion(src)
		return Ref{Scheme: SchemePage, Realm: "wiki", Locator: name, Version: version}, nil
	}

	switch realm {
	case "http", "https", "ftp":
		return Ref{Scheme: SchemeRemote, Realm: realm, Locator: src}, nil
	case "wiki":
		name, version := SplitVersion(rest)
		return Ref{Scheme: SchemePage, Realm: realm, Locator: name, Version: version}, nil
	case "source", "browser", "repos":
		path, rev := SplitVersion(rest)
		return Ref{Scheme: SchemeRepository, Realm: realm, Locator: path, Version: rev}, nil
	case "ticket":
		return Ref{Scheme: SchemeTicket, Realm: realm, Locator: rest}, nil
	}
	return Ref{}, Unsupported("Unsupported realm %s", realm)
}

// SplitVersion splits "path@version" at the first "@".
func SplitVersion(s string) (string, string) {
	path, version, _ := strings.Cut(s, "@")
	return path, version
}
