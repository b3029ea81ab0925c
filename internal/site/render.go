package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/3dmm/site/internal/anim"
	"github.com/3dmm/site/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Static returns the stylesheet and other assets served under /static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// ContactHref is where every contact drawer trigger points.
const ContactHref = "/about#contact"

// Page template names.
const (
	PageHome   = "home"
	PageAbout  = "about"
	PageTabbed = "tabbed"
	PageLegal  = "legal"
)

// Route describes one rendered page.
type Route struct {
	Path     string
	Template string
	Title    string
	// Key selects the tabbed page or legal document.
	Key string
}

// Routes lists every page the site serves.
var Routes = []Route{
	{Path: "/", Template: PageHome},
	{Path: "/about", Template: PageAbout, Title: "About Us"},
	{Path: "/solutions", Template: PageTabbed, Title: "Solutions", Key: "solutions"},
	{Path: "/strategic-allies", Template: PageTabbed, Title: "Strategic Allies", Key: "allies"},
	{Path: "/privacy", Template: PageLegal, Title: "Privacy Policy", Key: LegalPrivacy},
	{Path: "/terms", Template: PageLegal, Title: "Terms of Service", Key: LegalTerms},
	{Path: "/cookies", Template: PageLegal, Title: "Cookie Policy", Key: LegalCookies},
}

// Lookup finds the route for a request path.
func Lookup(path string) (Route, bool) {
	for _, r := range Routes {
		if r.Path == path {
			return r, true
		}
	}
	return Route{}, false
}

// PageData is the template context.
type PageData struct {
	Content          *Content
	Page             string
	Path             string
	Title            string
	Year             int
	MaxMessageLength int
	Tabs             TabView
	Legal            LegalDocument
}

// TabView is a tabbed page with its selected tab.
type TabView struct {
	Page   TabbedPage
	Active Tab
}

type legalSectionView struct {
	Section LegalSection
	Company Company
}

// Renderer renders site pages from embedded templates.
type Renderer struct {
	content *Content
	pages   map[string]*template.Template
	printer *message.Printer
	now     func() time.Time
}

// NewRenderer parses the layout with every page template.
func NewRenderer(c *Content) (*Renderer, error) {
	r := &Renderer{
		content: c,
		pages:   make(map[string]*template.Template),
		printer: message.NewPrinter(language.AmericanEnglish),
		now:     time.Now,
	}
	funcs := template.FuncMap{
		"contactHref": func() string { return ContactHref },
		"join":        strings.Join,
		"count":       r.FormatCount,
		"counter":     r.FormatCounter,
		"legalSection": func(s LegalSection, co Company) legalSectionView {
			return legalSectionView{Section: s, Company: co}
		},
	}
	for _, name := range []string{PageHome, PageAbout, PageTabbed, PageLegal} {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Content returns the content the renderer was built with.
func (r *Renderer) Content() *Content {
	return r.content
}

// FormatCount formats n with en-US digit grouping.
func (r *Renderer) FormatCount(n int64) string {
	return r.printer.Sprintf("%d", n)
}

// FormatCounter formats a counter's final value with its suffix.
func (r *Renderer) FormatCounter(cs anim.CounterSpec) string {
	s := r.FormatCount(cs.Target)
	switch {
	case cs.Suffix == "":
		return s
	case strings.HasPrefix(cs.Suffix, "%"):
		return s + cs.Suffix
	default:
		return s + " " + cs.Suffix
	}
}

// Data builds the template context for a route. tab selects the active tab
// on tabbed pages.
func (r *Renderer) Data(rt Route, tab string) (PageData, error) {
	d := PageData{
		Content:          r.content,
		Page:             rt.Template,
		Path:             rt.Path,
		Title:            rt.Title,
		Year:             r.now().Year(),
		MaxMessageLength: service.MaxMessageLength,
	}
	switch rt.Template {
	case PageTabbed:
		p := r.content.Solutions
		if rt.Key == "allies" {
			p = r.content.Allies
		}
		d.Tabs = TabView{Page: p, Active: p.Tab(tab)}
	case PageLegal:
		doc, ok := r.content.LegalDoc(rt.Key)
		if !ok {
			return PageData{}, fmt.Errorf("legal document %q not found", rt.Key)
		}
		d.Legal = doc
	}
	return d, nil
}

// Render writes the page for rt. Output is buffered so a template error
// never produces a partial page.
func (r *Renderer) Render(w io.Writer, rt Route, tab string) error {
	t, ok := r.pages[rt.Template]
	if !ok {
		return fmt.Errorf("unknown page template %q", rt.Template)
	}
	data, err := r.Data(rt, tab)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", rt.Path, err)
	}
	_, err = buf.WriteTo(w)
	return err
}
