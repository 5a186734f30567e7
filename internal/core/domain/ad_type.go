package domain

import "fmt"

// AdType is the ad unit kind a creative is served as.
type AdType string

const (
	AdTypeNotification    AdType = "ad_notification"
	AdTypeNewTabPage      AdType = "new_tab_page_ad"
	AdTypeInlineContent   AdType = "inline_content_ad"
	AdTypePromotedContent AdType = "promoted_content_ad"
	AdTypeSearchResult    AdType = "search_result_ad"
)

var adTypes = []AdType{
	AdTypeNotification,
	AdTypeNewTabPage,
	AdTypeInlineContent,
	AdTypePromotedContent,
	AdTypeSearchResult,
}

// AdTypes lists every known ad type.
func AdTypes() []AdType {
	return append([]AdType(nil), adTypes...)
}

// ParseAdType validates s as an ad type.
func ParseAdType(s string) (AdType, error) {
	for _, t := range adTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown ad type %q", s)
}
