package sitemap

// DefaultStaticRoutes lists the fixed public pages of the site. Order here is
// the order they appear in the generated document.
func DefaultStaticRoutes() []RouteEntry {
	return []RouteEntry{
		{Path: "/", ChangeFreq: FreqDaily, Priority: 1.0},
		{Path: "/browse", ChangeFreq: FreqHourly, Priority: 0.9},
		{Path: "/upload", ChangeFreq: FreqMonthly, Priority: 0.7},
		{Path: "/leaderboard", ChangeFreq: FreqDaily, Priority: 0.6},
		{Path: "/about", ChangeFreq: FreqMonthly, Priority: 0.5},
		{Path: "/contact", ChangeFreq: FreqMonthly, Priority: 0.4},
		{Path: "/privacy", ChangeFreq: FreqYearly, Priority: 0.3},
		{Path: "/terms", ChangeFreq: FreqYearly, Priority: 0.3},
	}
}
