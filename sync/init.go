package sync

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	gosync "sync"

	"github.com/biter777/countries"
	"github.com/tidwall/gjson"
	"github.com/ttacon/libphonenumber"
)

var initOnce gosync.Once

// Init registers the gjson modifiers available to field mappings.
// It is safe to call more than once, NewBridge calls it.
func Init() {
	initOnce.Do(func() {

		// @phone:<country code> formats a number as E.164, numbers without an
		// international prefix are read as belonging to the given country
		gjson.AddModifier("phone", func(jsonStr, arg string) string {
			res := gjson.Parse(jsonStr)
			number := strings.TrimSpace(res.String())
			if !res.Exists() || number == "" {
				return ""
			}
			region := "US"
			if i, err := strconv.Atoi(arg); err == nil {
				region = libphonenumber.GetRegionCodeForCountryCode(i)
			}
			if num, err := libphonenumber.Parse(number, region); err == nil {
				number = libphonenumber.Format(num, libphonenumber.E164)
			} else {
				log.Printf("Warning: failed to parse phone number %q with country code %q: %v (using original value)", number, arg, err)
			}
			return quoteJSON(number)
		})

		gjson.AddModifier("countryName", func(jsonStr, arg string) string {
			s := gjson.Parse(jsonStr).String()
			c := countries.ByName(s) // will match on Alpha-2 / Alpha-3 / Name
			if countries.Unknown == c {
				return ""
			}
			return quoteJSON(c.String()) // returns Country Name
		})

		gjson.AddModifier("lower", func(jsonStr, arg string) string {
			res := gjson.Parse(jsonStr)
			if !res.Exists() {
				return ""
			}
			return quoteJSON(strings.ToLower(res.String()))
		})

	})
}

func quoteJSON(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Sprintf("%q", s)
	}
	return string(b)
}
