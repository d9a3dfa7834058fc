package entity

import (
	"strings"
	"time"
)

// Date 날짜형 셀 값. 비어 있음(absent)을 단일 표현으로 갖는다.
// 레거시 시트에서 넘어오는 "", "nan", "NaT", "None" 센티널은 모두 absent로 본다.
type Date struct {
	t     time.Time
	valid bool
}

const dateLayout = "2006-01-02"

// 스프레드시트 편집기가 남기는 변형들
var dateLayouts = []string{
	dateLayout,
	"2006-01-02 15:04:05",
	"2006/01/02",
	time.RFC3339,
}

// ParseDate 원시 셀 값을 Date로 파싱한다. 파싱 불가능한 값은 absent가 된다.
func ParseDate(raw string) Date {
	s := strings.TrimSpace(raw)
	switch s {
	case "", "nan", "NaT", "None", "nil", "<nil>":
		return Date{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t)
		}
	}
	return Date{}
}

// DateOf 시각에서 날짜 부분만 취한다.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), valid: true}
}

// Valid 값이 채워져 있는지 여부
func (d Date) Valid() bool {
	return d.valid
}

// Time absent이면 영시각을 돌려준다.
func (d Date) Time() time.Time {
	return d.t
}

// Before 양쪽 모두 채워져 있을 때만 의미가 있다.
func (d Date) Before(other Date) bool {
	return d.valid && other.valid && d.t.Before(other.t)
}

func (d Date) String() string {
	if !d.valid {
		return ""
	}
	return d.t.Format(dateLayout)
}

// MarshalJSON "YYYY-MM-DD" 또는 빈 문자열로 직렬화한다.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON 센티널 규칙을 그대로 적용한다.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	*d = ParseDate(s)
	return nil
}
