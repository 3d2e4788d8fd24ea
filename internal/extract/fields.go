package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	reInt    = regexp.MustCompile(`[0-9]+`)
	reSize   = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)\s*m²`)
	reStudio = regexp.MustCompile(`(?i)studio`)
	reYear   = regexp.MustCompile(`(20[0-3][0-9])|(19[0-9][0-9])`)

	reBedrooms   = regexp.MustCompile(`(?i)bedrooms*`)
	reBathrooms  = regexp.MustCompile(`(?i)bathrooms*`)
	rePostalCode = regexp.MustCompile(`(?i)postal\s+code`)
)

// Coverage phrasings in priority order: English label first, English
// percentage first, then the same two orders in Greek. The keyword must
// start a word so "discover" or "ανακάλυψη" never count.
var coveragePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bcover(?:age)?[^0-9%]{0,40}?(\d+)\s*%`),
	regexp.MustCompile(`(?i)(\d+)\s*%[^0-9]{0,40}?\bcover`),
	regexp.MustCompile(`(?i)(?:^|[^\pL])κ[άα]λυψ[^0-9%]{0,40}?(\d+)\s*%`),
	regexp.MustCompile(`(?i)(\d+)\s*%[^0-9]{0,40}?(?:^|[^\pL])κ[άα]λυψ`),
}

var densityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:density|building\s+factor|συντελεστ[ήη]ς\s+δ[όο]μησης)[^0-9%]{0,40}?(\d+)\s*%`),
	regexp.MustCompile(`(?i)(\d+)\s*%[^0-9]{0,40}?(?:density|building\s+factor|δ[όο]μησης)`),
}

var heightPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)height[^0-9]{0,40}?(\d+(?:\.\d+)?)\s*m\b`),
	regexp.MustCompile(`(?i)ύψος[^0-9]{0,40}?(\d+(?:\.\d+)?)\s*(?:m|μ)`),
}

var storeyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:storeys|stories|floors)[^0-9]{0,40}?(\d+)`),
	regexp.MustCompile(`(?i)(\d+)\s*(?:storeys|stories|floors)`),
}

// Size returns the first "<number> m²" value in text, truncated to whole
// square metres.
func Size(text string) *uint32 {
	m := reSize.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil || f < 0 || f > float64(^uint32(0)) {
		return nil
	}
	v := uint32(f)
	return &v
}

// Bedrooms returns 0 for studios. Otherwise it reads the link text of the
// first list item mentioning bedrooms.
func Bedrooms(chars *goquery.Selection) *uint8 {
	if reStudio.MatchString(chars.Text()) {
		v := uint8(0)
		return &v
	}
	li := labelled(chars, reBedrooms)
	if li == nil {
		return nil
	}
	return uint8Of(strings.TrimSpace(li.Find("a").First().Text()))
}

// Bathrooms returns the first integer span of the bathrooms list item.
func Bathrooms(chars *goquery.Selection) *uint8 {
	li := labelled(chars, reBathrooms)
	if li == nil {
		return nil
	}
	return uint8Of(firstIntSpan(li))
}

// PostalCode returns the first integer span of the postal code list item.
func PostalCode(chars *goquery.Selection) *uint32 {
	li := labelled(chars, rePostalCode)
	if li == nil {
		return nil
	}
	return uint32Of(firstIntSpan(li))
}

// ConstructionYear returns the earliest year-like token between 1900 and
// 2039 found in text. Descriptions often mention a later renovation year as
// well, so the minimum is taken.
func ConstructionYear(text string) *uint32 {
	var year *uint32
	for _, m := range reYear.FindAllString(text, -1) {
		v := uint32Of(m)
		if v == nil {
			continue
		}
		if year == nil || *v < *year {
			year = v
		}
	}
	return year
}

// Coverage returns the maximum building coverage ratio in percent. Values
// above 100 are ignored.
func Coverage(text string) *uint32 {
	v := firstUint(coveragePatterns, text)
	if v != nil && *v > 100 {
		return nil
	}
	return v
}

// Density returns the building density ratio in percent.
func Density(text string) *uint32 {
	return firstUint(densityPatterns, text)
}

// MaxStoreys returns the permitted number of storeys.
func MaxStoreys(text string) *uint32 {
	return firstUint(storeyPatterns, text)
}

// MaxHeight returns the permitted building height in metres.
func MaxHeight(text string) *float64 {
	for _, re := range heightPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if f, err := strconv.ParseFloat(m[1], 64); err == nil {
			return &f
		}
	}
	return nil
}

func firstUint(patterns []*regexp.Regexp, text string) *uint32 {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if v := uint32Of(m[1]); v != nil {
			return v
		}
	}
	return nil
}

// labelled returns the first list item whose markup matches label.
func labelled(chars *goquery.Selection, label *regexp.Regexp) *goquery.Selection {
	var found *goquery.Selection
	chars.Find("li").EachWithBreak(func(_ int, li *goquery.Selection) bool {
		if label.MatchString(li.Text()) {
			found = li
			return false
		}
		return true
	})
	return found
}

func firstIntSpan(li *goquery.Selection) string {
	var value string
	li.Find("span").EachWithBreak(func(_ int, span *goquery.Selection) bool {
		if tok := reInt.FindString(span.Text()); tok != "" {
			value = tok
			return false
		}
		return true
	})
	return value
}

func uint8Of(s string) *uint8 {
	n, err := strconv.ParseUint(reInt.FindString(s), 10, 8)
	if err != nil {
		return nil
	}
	v := uint8(n)
	return &v
}

func uint32Of(s string) *uint32 {
	n, err := strconv.ParseUint(reInt.FindString(s), 10, 32)
	if err != nil {
		return nil
	}
	v := uint32(n)
	return &v
}
