// Package project turns project identifiers (language codes, hostnames,
// origins, or the local-site sentinel) into site origins, API endpoints and
// page URLs.
package project

import (
	"net/url"
	"strconv"
	"strings"
)

// LocalSentinel names the wiki this service runs next to.
const LocalSentinel = "@local"

// devAPIPath is used for every project when DevMode is set, so a local
// wiki on an alternate port works without matching the real script path.
const devAPIPath = "/w/api.php"

// SiteContext describes the current site.
type SiteContext struct {
	Host        string // e.g. en.wikipedia.org
	ScriptPath  string // e.g. /w
	ArticlePath string // e.g. /wiki/$1
	DevMode     bool
}

// Resolver resolves project identifiers against a SiteContext.
// All methods are pure and never fail; malformed input produces a malformed URL.
type Resolver struct {
	site SiteContext
}

// NewResolver creates a resolver for the given site.
func NewResolver(site SiteContext) *Resolver {
	if site.ArticlePath == "" {
		site.ArticlePath = "/wiki/$1"
	}
	return &Resolver{site: site}
}

// Site returns the site context the resolver was built with.
func (r *Resolver) Site() SiteContext {
	return r.site
}

// ResolveOrigin returns the site origin for a project identifier.
func (r *Resolver) ResolveOrigin(project string) string {
	if project == LocalSentinel {
		return "https://" + r.site.Host
	}
	if !strings.Contains(project, "/") {
		// language codes never contain dots, hostnames always do
		if strings.Contains(project, ".") {
			return "https://" + project
		}
		return "https://" + project + "." + r.familyDomain()
	}
	return project
}

// ResolveAPIEndpoint returns the action API URL for a project.
func (r *Resolver) ResolveAPIEndpoint(project string) string {
	origin := r.ResolveOrigin(project)
	if r.site.DevMode {
		return origin + devAPIPath
	}
	return origin + r.site.ScriptPath + "/api.php"
}

// PageURL builds the browsable URL of a title on a project.
func (r *Resolver) PageURL(project, title string) string {
	path := strings.Replace(r.site.ArticlePath, "$1", encodeTitle(title), 1)
	return r.ResolveOrigin(project) + path
}

// PageIDURL builds a URL for a page known only by its id.
func (r *Resolver) PageIDURL(project string, id int64) string {
	return r.ResolveOrigin(project) + r.site.ScriptPath + "/index.php?curid=" + strconv.FormatInt(id, 10)
}

// familyDomain strips the first label off the current host.
func (r *Resolver) familyDomain() string {
	host := r.site.Host
	if i := strings.Index(host, "."); i != -1 {
		return host[i+1:]
	}
	return host
}

// encodeTitle writes a title in DB-key form and escapes it for a URL path,
// leaving ':' and '/' readable.
func encodeTitle(title string) string {
	escaped := url.PathEscape(strings.ReplaceAll(title, " ", "_"))
	return strings.ReplaceAll(escaped, "%2F", "/")
}
