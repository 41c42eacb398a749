package generators

import (
	"math/rand"
	"strings"

	"golang.org/x/text/language"
)

const DefaultLocale = "en"

// Locale holds the word pools used by locale-aware kinds.
type Locale struct {
	Code              string
	FirstNames        []string
	LastNames         []string
	StreetNames       []string
	StreetSuffixes    []string
	StreetNumberFirst bool
	Cities            []string
	Countries         []string
	ZipPattern        string
	CompanySuffixes   []string
}

// Street renders a street line in the locale's conventional order.
func (l *Locale) Street(rng *rand.Rand) string {
	number := ReplaceSymbols(rng, strings.Repeat("#", 1+rng.Intn(4)))
	number = strings.TrimLeft(number, "0")
	if number == "" {
		number = "1"
	}
	name := pick(rng, l.StreetNames)
	if len(l.StreetSuffixes) > 0 {
		name += " " + pick(rng, l.StreetSuffixes)
	}
	if l.StreetNumberFirst {
		return number + " " + name
	}
	return name + " " + number
}

var locales = map[string]*Locale{
	"en": {
		Code: "en",
		FirstNames: []string{
			"James", "Mary", "John", "Patricia", "Robert", "Jennifer", "Michael", "Linda",
			"William", "Elizabeth", "David", "Barbara", "Richard", "Susan", "Joseph", "Jessica",
			"Thomas", "Sarah", "Charles", "Karen", "Daniel", "Nancy", "Matthew", "Lisa",
		},
		LastNames: []string{
			"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis",
			"Rodriguez", "Martinez", "Hernandez", "Lopez", "Wilson", "Anderson", "Thomas",
			"Taylor", "Moore", "Jackson", "Martin", "Lee", "Thompson", "White", "Harris",
		},
		StreetNames:       []string{"Main", "Oak", "Pine", "Maple", "Cedar", "Elm", "Washington", "Lake", "Hill", "Park", "Sunset", "Highland"},
		StreetSuffixes:    []string{"Street", "Avenue", "Road", "Lane", "Drive", "Court", "Boulevard"},
		StreetNumberFirst: true,
		Cities:            []string{"Springfield", "Riverside", "Franklin", "Greenville", "Bristol", "Clinton", "Fairview", "Salem", "Madison", "Georgetown", "Arlington", "Ashland"},
		Countries:         []string{"United States", "Canada", "United Kingdom", "Australia", "Ireland", "New Zealand"},
		ZipPattern:        "#####",
		CompanySuffixes:   []string{"Inc", "LLC", "Group", "Corp", "and Sons", "Ltd"},
	},
	"de": {
		Code: "de",
		FirstNames: []string{
			"Lukas", "Anna", "Leon", "Lea", "Finn", "Hannah", "Jonas", "Mia",
			"Paul", "Emma", "Felix", "Sophie", "Maximilian", "Laura", "Elias", "Lena",
		},
		LastNames: []string{
			"Müller", "Schmidt", "Schneider", "Fischer", "Weber", "Meyer", "Wagner", "Becker",
			"Schulz", "Hoffmann", "Koch", "Richter", "Klein", "Wolf", "Schröder", "Neumann",
		},
		StreetNames:     []string{"Hauptstraße", "Schulstraße", "Gartenstraße", "Bahnhofstraße", "Dorfstraße", "Bergstraße", "Lindenstraße", "Kirchstraße"},
		Cities:          []string{"Berlin", "Hamburg", "München", "Köln", "Frankfurt", "Stuttgart", "Düsseldorf", "Leipzig", "Dresden", "Bremen"},
		Countries:       []string{"Deutschland", "Österreich", "Schweiz", "Liechtenstein"},
		ZipPattern:      "#####",
		CompanySuffixes: []string{"GmbH", "AG", "KG", "GmbH & Co. KG", "e.K."},
	},
	"fr": {
		Code: "fr",
		FirstNames: []string{
			"Gabriel", "Louise", "Léo", "Jade", "Raphaël", "Emma", "Arthur", "Alice",
			"Louis", "Chloé", "Jules", "Inès", "Adam", "Léa", "Hugo", "Manon",
		},
		LastNames: []string{
			"Martin", "Bernard", "Dubois", "Thomas", "Robert", "Richard", "Petit", "Durand",
			"Leroy", "Moreau", "Simon", "Laurent", "Lefebvre", "Michel", "Garcia", "David",
		},
		StreetNames:       []string{"rue de la Paix", "avenue Victor Hugo", "rue de la République", "chemin du Moulin", "rue des Écoles", "place de l'Église", "boulevard Jean Jaurès", "rue Pasteur"},
		StreetNumberFirst: true,
		Cities:            []string{"Paris", "Marseille", "Lyon", "Toulouse", "Nice", "Nantes", "Strasbourg", "Montpellier", "Bordeaux", "Lille"},
		Countries:         []string{"France", "Belgique", "Suisse", "Luxembourg", "Monaco"},
		ZipPattern:        "#####",
		CompanySuffixes:   []string{"SA", "SARL", "SAS", "et Fils"},
	},
	"es": {
		Code: "es",
		FirstNames: []string{
			"Hugo", "Lucía", "Martín", "Sofía", "Pablo", "Martina", "Daniel", "María",
			"Alejandro", "Julia", "Mateo", "Paula", "Diego", "Valeria", "Álvaro", "Carmen",
		},
		LastNames: []string{
			"García", "Rodríguez", "González", "Fernández", "López", "Martínez", "Sánchez", "Pérez",
			"Gómez", "Martín", "Jiménez", "Ruiz", "Hernández", "Díaz", "Moreno", "Álvarez",
		},
		StreetNames:     []string{"Calle Mayor", "Calle Real", "Avenida de la Constitución", "Calle del Sol", "Plaza de España", "Calle Nueva", "Paseo del Prado"},
		Cities:          []string{"Madrid", "Barcelona", "Valencia", "Sevilla", "Zaragoza", "Málaga", "Murcia", "Palma", "Bilbao", "Alicante"},
		Countries:       []string{"España", "México", "Argentina", "Colombia", "Chile", "Perú"},
		ZipPattern:      "#####",
		CompanySuffixes: []string{"S.A.", "S.L.", "y Asociados", "Hermanos"},
	},
}

// ResolveLocale parses a BCP 47 tag and returns the pools for its base
// language. Unknown or malformed tags resolve to English.
func ResolveLocale(tag string) *Locale {
	if tag == "" {
		return locales[DefaultLocale]
	}
	t, err := language.Parse(tag)
	if err != nil {
		return locales[DefaultLocale]
	}
	base, _ := t.Base()
	if loc, ok := locales[base.String()]; ok {
		return loc
	}
	return locales[DefaultLocale]
}

// SupportedLocales lists the locale codes with dedicated pools.
func SupportedLocales() []string {
	return []string{"de", "en", "es", "fr"}
}
