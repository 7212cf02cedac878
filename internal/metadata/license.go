package metadata

import "strings"

// LicenseMatch is the result of scanning a license file.
type LicenseMatch struct {
	AuthorName  string
	LicenseName string
}

// ExtractLicense scans content for the search tokens of authors and
// licenses. Matching is a case-sensitive substring search; when several
// tokens of a table match, the last entry of the table wins.
func ExtractLicense(authors, licenses []Entry, content string) LicenseMatch {
	var match LicenseMatch
	for _, author := range authors {
		if author.SearchToken != "" && strings.Contains(content, author.SearchToken) {
			match.AuthorName = author.Name
		}
	}
	for _, license := range licenses {
		if license.SearchToken != "" && strings.Contains(content, license.SearchToken) {
			match.LicenseName = license.Name
		}
	}
	return match
}
