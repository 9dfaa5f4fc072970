package pipeline

import (
	"regexp"
	"strings"

	"github.com/samber/lo"
)

var httpURLPattern = regexp.MustCompile(`(?i)^https?://\S+$`)

// Link 提交的外部链接
type Link struct {
	Label string
	URL   string
}

// NormalizeLinks 只保留 http(s) 链接, 非法条目直接丢弃.
// defaultLabel 为空时, 标签为空的条目同样丢弃.
func NormalizeLinks(links []Link, defaultLabel string) []Link {
	return lo.FilterMap(links, func(l Link, _ int) (Link, bool) {
		url := strings.TrimSpace(l.URL)
		if !httpURLPattern.MatchString(url) {
			return Link{}, false
		}
		label := strings.TrimSpace(l.Label)
		if label == "" {
			if defaultLabel == "" {
				return Link{}, false
			}
			label = defaultLabel
		}
		return Link{Label: label, URL: url}, true
	})
}
