package sitemap

import "strings"

// Robots renders the robots.txt companion for the site: public paths are
// allowed, account/admin surfaces are disallowed, and a Sitemap directive
// points crawlers at the published document.
func Robots(baseURL string) string {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	for _, p := range []string{"/", "/browse", "/upload", "/leaderboard", "/about", "/contact"} {
		b.WriteString("Allow: " + p + "\n")
	}
	for _, p := range []string{"/admin", "/dashboard", "/profile", "/settings", "/api/"} {
		b.WriteString("Disallow: " + p + "\n")
	}
	b.WriteString("\nSitemap: " + baseURL + "/sitemap.xml\n")
	return b.String()
}
