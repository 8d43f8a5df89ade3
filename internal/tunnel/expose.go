package tunnel

import "regexp"

// expose prints its assigned endpoint to stdout as a "Public HTTPS" line.
// The output format is not a contract, so scraping is best effort; the first
// well-formed match wins and is treated as final for the run.
var publicURLPattern = regexp.MustCompile(`Public HTTPS:\s+(https?://\S+)`)

// ExtractPublicURL scans captured tunnel output for the public HTTPS endpoint
// announcement. It returns "" until one appears.
func ExtractPublicURL(output string) string {
	m := publicURLPattern.FindStringSubmatch(output)
	if m == nil {
		return ""
	}
	return m[1]
}
