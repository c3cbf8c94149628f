//
// Copyright (C) 2025 The lib-x authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package mobi

import (
	"regexp"
	"strings"
)

type htmlMetaPattern struct {
	key       MetaKey
	titleOnly bool
	re        *regexp.Regexp
}

func dcPattern(tag string) *regexp.Regexp {
	return regexp.MustCompile(`(?is)<dc:` + tag + `.*?>(.*?)</dc:` + tag + `>`)
}

// Older Mobipocket files carry no EXTH block and instead embed Dublin
// Core elements in the first text record.
var htmlMetaPatterns = []htmlMetaPattern{
	{key: MetaTitle, titleOnly: true, re: dcPattern("title")},
	{key: MetaAuthor, re: dcPattern("creator")},
	{key: MetaCopyright, re: dcPattern("rights")},
	{key: MetaSubject, re: dcPattern("subject")},
	{key: MetaDescription, re: dcPattern("description")},
}

// scrapeHTMLMetadata pulls Dublin Core metadata out of decompressed
// record text. Title is only taken when none is set yet.
func scrapeHTMLMetadata(html string, meta map[MetaKey]MetaValue) {
	for _, p := range htmlMetaPatterns {
		if p.titleOnly {
			if _, ok := meta[p.key]; ok {
				continue
			}
		}
		m := p.re.FindStringSubmatch(html)
		if m == nil {
			continue
		}
		value := strings.TrimSpace(m[1])
		if value == "" {
			continue
		}
		log.Debugf("html metadata fallback found %s", p.key)
		meta[p.key] = stringValue(value)
	}
}
