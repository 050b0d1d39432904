package shell

// NavEntry is an entry of the main navigation.
type NavEntry struct {
	Href  string
	ID    string
	Label map[string]string
}

// NavEntries returns the main navigation in display order.
// IDs match router.ActiveTag values.
func NavEntries() []NavEntry {
	return []NavEntry{
		{Href: "/", ID: "home", Label: map[string]string{"pt": "Início", "en": "Home"}},
		{Href: "/sobre", ID: "sobre", Label: map[string]string{"pt": "Sobre", "en": "About"}},
		{Href: "/sermoes", ID: "sermoes", Label: map[string]string{"pt": "Sermões", "en": "Sermons"}},
		{Href: "/blog", ID: "blog", Label: map[string]string{"pt": "Blog", "en": "Blog"}},
		{Href: "/eventos", ID: "eventos", Label: map[string]string{"pt": "Agenda", "en": "Events"}},
		{Href: "/oracoes", ID: "oracoes", Label: map[string]string{"pt": "Oração", "en": "Prayer"}},
		{Href: "/biblia", ID: "biblia", Label: map[string]string{"pt": "Bíblia", "en": "Bible"}},
		{Href: "/avisos", ID: "avisos", Label: map[string]string{"pt": "Avisos", "en": "Notices"}},
		{Href: "/recursos", ID: "recursos", Label: map[string]string{"pt": "Recursos", "en": "Resources"}},
		{Href: "/contacto", ID: "contacto", Label: map[string]string{"pt": "Contacto", "en": "Contact"}},
	}
}
