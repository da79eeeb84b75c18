package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	mathrand "math/rand"

	"github.com/bidwatch-dev/bidwatch/backend/internal/criteria"
	"github.com/bidwatch-dev/bidwatch/backend/internal/domain"
)

// GenerateMagicToken returns a URL-safe login token backed by crypto/rand.
func GenerateMagicToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// The helpers below exist for cmd/seed only.

var seedNames = []string{
	"alex", "casey", "jordan", "morgan", "riley",
	"quinn", "taylor", "avery", "devin", "reese",
}

func GenerateRandomEmail(domainName string) string {
	name := seedNames[mathrand.Intn(len(seedNames))]
	return fmt.Sprintf("%s%03d@%s", name, mathrand.Intn(1000), domainName)
}

var seedTimes = []string{"07:30", "08:00", "09:00", "12:00", "17:30"}

func GenerateRandomSchedule(userID int64) *domain.Schedule {
	schedule := &domain.Schedule{
		UserID: userID,
		Name:   fmt.Sprintf("watch-%03d", mathrand.Intn(1000)),
	}

	days := []**string{
		&schedule.Monday,
		&schedule.Tuesday,
		&schedule.Wednesday,
		&schedule.Thursday,
		&schedule.Friday,
		&schedule.Saturday,
		&schedule.Sunday,
	}
	for _, day := range days {
		if mathrand.Intn(2) == 0 {
			t := seedTimes[mathrand.Intn(len(seedTimes))]
			*day = &t
		}
	}

	return schedule
}

var seedKeywords = []string{"roof", "hvac", "paving", "bridge", "software", "janitorial"}

func GenerateRandomFilter(userID int64) *domain.Filter {
	keyword := seedKeywords[mathrand.Intn(len(seedKeywords))]

	return &domain.Filter{
		UserID: userID,
		Name:   keyword + " watch",
		Criteria: &criteria.Node{
			Op: "AND",
			Conditions: []*criteria.Node{
				{Field: "evp_name", Operator: criteria.OpContains, Value: keyword},
				{Field: "evp_posteddate", Operator: criteria.OpEquals, Value: "last_7_days"},
			},
		},
	}
}
