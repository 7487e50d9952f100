// Package normalize canonicalizes free-text vehicle fields collected in chat.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var brandAliases = map[string]string{
	"vw":            "Volkswagen",
	"volks":         "Volkswagen",
	"volkswagen":    "Volkswagen",
	"chevy":         "Chevrolet",
	"chevrolet":     "Chevrolet",
	"chevrolét":     "Chevrolet",
	"mercedes":      "Mercedes-Benz",
	"mercedes benz": "Mercedes-Benz",
	"mercedes-benz": "Mercedes-Benz",
	"benz":          "Mercedes-Benz",
	"bmw":           "BMW",
	"gmc":           "GMC",
	"kia":           "KIA",
	"seat":          "SEAT",
	"mini":          "MINI",
	"toyota":        "Toyota",
	"nissan":        "Nissan",
	"honda":         "Honda",
	"ford":          "Ford",
	"mazda":         "Mazda",
	"hyundai":       "Hyundai",
	"mitsubishi":    "Mitsubishi",
	"suzuki":        "Suzuki",
	"renault":       "Renault",
	"peugeot":       "Peugeot",
	"dodge":         "Dodge",
	"chrysler":      "Chrysler",
	"jeep":          "Jeep",
	"ram":           "RAM",
	"audi":          "Audi",
	"subaru":        "Subaru",
	"fiat":          "Fiat",
	"buick":         "Buick",
	"cadillac":      "Cadillac",
	"lincoln":       "Lincoln",
	"acura":         "Acura",
	"infiniti":      "Infiniti",
	"volvo":         "Volvo",
}

var titleCaser = cases.Title(language.Spanish)

// Brand maps raw to a canonical brand name. Unknown brands are title-cased.
func Brand(raw string) string {
	key := strings.Join(strings.Fields(strings.ToLower(raw)), " ")
	if key == "" {
		return ""
	}
	if canonical, ok := brandAliases[key]; ok {
		return canonical
	}
	return titleCaser.String(key)
}
