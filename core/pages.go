package core

// Page binds a path to the template rendered for it.
type Page struct {
	Path     string
	Template string
	Title    string
}

// Pages is the route table. It is read-only after init.
var Pages = []Page{
	{Path: "/", Template: "index", Title: "Orrery"},
	{Path: "/simulation", Template: "simulation", Title: "Solar System Simulation"},
	{Path: "/sandbox", Template: "sandbox", Title: "Sandbox"},
}

// Pattern returns the ServeMux pattern for the page. The root page only
// matches "/" exactly so every other path falls through to the 404 handler.
func (p Page) Pattern() string {
	if p.Path == "/" {
		return "GET /{$}"
	}
	return "GET " + p.Path
}

func (p Page) TemplatePath() string {
	return "pages/" + p.Template + ".html"
}
