package site

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/3dmm/site/internal/anim"
)

//go:embed content.yaml
var defaultContent []byte

// Legal document types served by the site.
const (
	LegalPrivacy = "privacy"
	LegalTerms   = "terms"
	LegalCookies = "cookies"
)

// LegalTypes lists the documents every content file must define.
var LegalTypes = []string{LegalPrivacy, LegalTerms, LegalCookies}

var ErrInvalidContent = errors.New("invalid site content")

type Content struct {
	Company    Company                  `yaml:"company" json:"company"`
	Nav        []Link                   `yaml:"nav" json:"nav"`
	LegalLinks []Link                   `yaml:"legalLinks" json:"legalLinks"`
	Hero       Hero                     `yaml:"hero" json:"hero"`
	Hub        Hub                      `yaml:"hub" json:"hub"`
	Solutions  TabbedPage               `yaml:"solutions" json:"solutions"`
	Allies     TabbedPage               `yaml:"allies" json:"allies"`
	About      About                    `yaml:"about" json:"about"`
	Legal      map[string]LegalDocument `yaml:"legal" json:"legal"`
}

type Company struct {
	Name      string `yaml:"name" json:"name"`
	ShortName string `yaml:"shortName" json:"shortName"`
	Email     string `yaml:"email" json:"email"`
	// LegalEmail is the address quoted in the legal documents.
	LegalEmail string   `yaml:"legalEmail" json:"legalEmail"`
	Address    string   `yaml:"address" json:"address"`
	Locations  []string `yaml:"locations" json:"locations"`
}

type Link struct {
	Label string `yaml:"label" json:"label"`
	Href  string `yaml:"href" json:"href"`
}

type Image struct {
	Src   string `yaml:"src" json:"src"`
	Alt   string `yaml:"alt" json:"alt"`
	Label string `yaml:"label,omitempty" json:"label,omitempty"`
}

// Hero holds the home page reveal: the stacked layer images, the rotating
// taglines and the statistics counters.
type Hero struct {
	Layers   []Image            `yaml:"layers" json:"layers"`
	Taglines []Tagline          `yaml:"taglines" json:"taglines"`
	Counters []anim.CounterSpec `yaml:"counters" json:"counters"`
}

type Tagline struct {
	Words []Word `yaml:"words" json:"words"`
}

type Word struct {
	Text        string `yaml:"text" json:"text"`
	Highlighted bool   `yaml:"highlighted,omitempty" json:"highlighted,omitempty"`
}

// String joins the words with single spaces.
func (t Tagline) String() string {
	parts := make([]string, len(t.Words))
	for i, w := range t.Words {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}

type Hub struct {
	Heading     string    `yaml:"heading" json:"heading"`
	Intro       string    `yaml:"intro" json:"intro"`
	Cards       []HubCard `yaml:"cards" json:"cards"`
	CTATitle    string    `yaml:"ctaTitle" json:"ctaTitle"`
	CTASubtitle string    `yaml:"ctaSubtitle" json:"ctaSubtitle"`
	CTALabel    string    `yaml:"ctaLabel" json:"ctaLabel"`
}

type HubCard struct {
	Index       string `yaml:"index" json:"index"`
	Title       string `yaml:"title" json:"title"`
	Subtitle    string `yaml:"subtitle" json:"subtitle"`
	Description string `yaml:"description" json:"description"`
	Href        string `yaml:"href" json:"href"`
	CTA         string `yaml:"cta" json:"cta"`
}

// TabbedPage is a page whose body switches between tabs (Solutions,
// Strategic Allies).
type TabbedPage struct {
	Title string `yaml:"title" json:"title"`
	Tabs  []Tab  `yaml:"tabs" json:"tabs"`
}

type Tab struct {
	Key      string    `yaml:"key" json:"key"`
	Label    string    `yaml:"label" json:"label"`
	Image    string    `yaml:"image,omitempty" json:"image,omitempty"`
	ImageAlt string    `yaml:"imageAlt,omitempty" json:"imageAlt,omitempty"`
	Sections []Section `yaml:"sections" json:"sections"`
	Footnote string    `yaml:"footnote,omitempty" json:"footnote,omitempty"`
	Logos    []Image   `yaml:"logos,omitempty" json:"logos,omitempty"`
}

type Section struct {
	Title string   `yaml:"title,omitempty" json:"title,omitempty"`
	Body  []string `yaml:"body,omitempty" json:"body,omitempty"`
	Items []string `yaml:"items,omitempty" json:"items,omitempty"`
}

// Tab returns the tab with the given key, or the first tab when key is
// empty or unknown.
func (p TabbedPage) Tab(key string) Tab {
	for _, t := range p.Tabs {
		if t.Key == key {
			return t
		}
	}
	if len(p.Tabs) == 0 {
		return Tab{}
	}
	return p.Tabs[0]
}

type About struct {
	Title        string   `yaml:"title" json:"title"`
	Paragraphs   []string `yaml:"paragraphs" json:"paragraphs"`
	ContactIntro string   `yaml:"contactIntro" json:"contactIntro"`
}

type LegalDocument struct {
	Title    string         `yaml:"title" json:"title"`
	Updated  string         `yaml:"updated" json:"updated"`
	Sections []LegalSection `yaml:"sections" json:"sections"`
}

type LegalSection struct {
	Heading     string         `yaml:"heading" json:"heading"`
	Paragraphs  []string       `yaml:"paragraphs,omitempty" json:"paragraphs,omitempty"`
	Items       []string       `yaml:"items,omitempty" json:"items,omitempty"`
	Subsections []LegalSection `yaml:"subsections,omitempty" json:"subsections,omitempty"`
	// Contact appends the company address block after the paragraphs.
	Contact bool `yaml:"contact,omitempty" json:"contact,omitempty"`
}

// Load reads site content from path, or the embedded default when path is
// empty.
func Load(path string) (*Content, error) {
	data := defaultContent
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read site content: %w", err)
		}
		data = b
	}
	return Parse(data)
}

// Parse decodes and validates YAML content. Unknown fields are rejected.
func Parse(data []byte) (*Content, error) {
	var c Content
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode site content: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the fields the pages and APIs depend on.
func (c *Content) Validate() error {
	var problems []string
	if c.Company.Name == "" {
		problems = append(problems, "company.name is required")
	}
	if c.Company.Email == "" {
		problems = append(problems, "company.email is required")
	}
	for _, t := range LegalTypes {
		doc, ok := c.Legal[t]
		if !ok {
			problems = append(problems, "legal."+t+" is missing")
			continue
		}
		if doc.Title == "" || len(doc.Sections) == 0 {
			problems = append(problems, "legal."+t+" needs a title and sections")
		}
	}
	seen := make(map[string]bool)
	for _, p := range []TabbedPage{c.Solutions, c.Allies} {
		clear(seen)
		for _, tab := range p.Tabs {
			if tab.Key == "" {
				problems = append(problems, p.Title+": tab without key")
			} else if seen[tab.Key] {
				problems = append(problems, p.Title+": duplicate tab "+tab.Key)
			}
			seen[tab.Key] = true
		}
	}
	for i, cs := range c.Hero.Counters {
		if cs.Target <= 0 || cs.DurationMS <= 0 {
			problems = append(problems, fmt.Sprintf("hero.counters[%d] needs a positive target and duration", i))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidContent, strings.Join(problems, "; "))
	}
	return nil
}

// LegalDoc returns the legal document of the given type.
func (c *Content) LegalDoc(docType string) (LegalDocument, bool) {
	doc, ok := c.Legal[docType]
	return doc, ok
}

// Taglines returns the taglines as plain strings.
func (c *Content) Taglines() []string {
	out := make([]string, len(c.Hero.Taglines))
	for i, t := range c.Hero.Taglines {
		out[i] = t.String()
	}
	return out
}
