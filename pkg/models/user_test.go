package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUser_Age(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 12, 0, 0, 0, time.UTC) }

	tests := []struct {
		name string
		dob  time.Time
		now  time.Time
		want int
	}{
		{"birthday after leap day of birth year", day(2000, time.March, 1), day(2025, time.March, 1), 25},
		{"day before birthday", day(2000, time.March, 1), day(2025, time.February, 28), 24},
		{"birthday in a leap year", day(2001, time.March, 1), day(2024, time.March, 1), 23},
		{"day before birthday in a leap year", day(2001, time.March, 1), day(2024, time.February, 29), 22},
		{"leap day birth on feb 28", day(2004, time.February, 29), day(2025, time.February, 28), 20},
		{"leap day birth on march 1", day(2004, time.February, 29), day(2025, time.March, 1), 21},
		{"end of year", day(2010, time.December, 31), day(2024, time.December, 31), 14},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dob := tt.dob
			u := &User{DateOfBirth: &dob}
			age := u.Age(tt.now)
			if assert.NotNil(t, age) {
				assert.Equal(t, tt.want, *age)
			}
		})
	}

	assert.Nil(t, (&User{}).Age(time.Now()))
}
