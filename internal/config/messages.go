package config

import (
	"reflect"

	"golang.org/x/text/language"
)

// DefaultLanguage is the catalog every configuration must provide. Missing
// strings in other catalogs fall back to it.
const DefaultLanguage = "en"

// Messages is the catalog of user-facing strings. Strings with verbs are
// printf formats; the comment names their arguments.
type Messages struct {
	GeneralError      string `mapstructure:"general_error"`
	NoAnswer          string `mapstructure:"no_answer"`
	MediaError        string `mapstructure:"media_error"`
	Unauthorized      string `mapstructure:"unauthorized"`
	RecapInvalidLimit string `mapstructure:"recap_invalid_limit"` // max limit
	RecapEmpty        string `mapstructure:"recap_empty"`
	HistoryCleared    string `mapstructure:"history_cleared"`
	QuestionEmpty     string `mapstructure:"question_empty"`
	VoteKickUsage     string `mapstructure:"vote_kick_usage"`
	VoteKickSelf      string `mapstructure:"vote_kick_self"`
	VoteKickAdmin     string `mapstructure:"vote_kick_admin"`     // target
	VoteKickNotFound  string `mapstructure:"vote_kick_not_found"` // target
	VoteKickQuestion  string `mapstructure:"vote_kick_question"`  // target
	VoteKickYes       string `mapstructure:"vote_kick_yes"`
	VoteKickNo        string `mapstructure:"vote_kick_no"`
	VoteKickKicked    string `mapstructure:"vote_kick_kicked"`   // target, yes, no
	VoteKickRetained  string `mapstructure:"vote_kick_retained"` // target, yes, no
	VoteKickExpired   string `mapstructure:"vote_kick_expired"`  // target
	VoteKickFailed    string `mapstructure:"vote_kick_failed"`   // target
	ScanNone          string `mapstructure:"scan_none"`          // window
	ScanHeader        string `mapstructure:"scan_header"`        // window
	UsersHeader       string `mapstructure:"users_header"`       // count
	UsersEmpty        string `mapstructure:"users_empty"`
	AdminMarker       string `mapstructure:"admin_marker"`
}

func parseTag(s string) (language.Tag, error) {
	return language.Parse(s)
}

// Messages returns the catalog that best matches the configured language,
// with empty strings filled from the default catalog.
func (c *Config) Messages() Messages {
	return SelectMessages(c.Catalogs, c.Language)
}

// SelectMessages picks the catalog whose tag best matches lang.
func SelectMessages(catalogs map[string]Messages, lang string) Messages {
	fallback := catalogs[DefaultLanguage]

	keys := make([]string, 0, len(catalogs))
	tags := make([]language.Tag, 0, len(catalogs))
	// The matcher falls back to its first tag, so the default goes first.
	if _, ok := catalogs[DefaultLanguage]; ok {
		keys = append(keys, DefaultLanguage)
		tags = append(tags, language.Make(DefaultLanguage))
	}
	for key := range catalogs {
		if key == DefaultLanguage {
			continue
		}
		tag, err := language.Parse(key)
		if err != nil {
			continue
		}
		keys = append(keys, key)
		tags = append(tags, tag)
	}
	if len(tags) == 0 {
		return fallback
	}

	_, idx, _ := language.NewMatcher(tags).Match(language.Make(lang))
	return fillMissing(catalogs[keys[idx]], fallback)
}

func fillMissing(m, fallback Messages) Messages {
	dst := reflect.ValueOf(&m).Elem()
	src := reflect.ValueOf(fallback)
	for i := range dst.NumField() {
		if f := dst.Field(i); f.Kind() == reflect.String && f.String() == "" {
			f.SetString(src.Field(i).String())
		}
	}
	return m
}
