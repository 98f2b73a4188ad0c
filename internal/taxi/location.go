// Package taxi validates taxi-fare reimbursement requests: pickup
// location and pickup time policy checks keyed by an issued request id.
package taxi

import "strings"

// primaryBuilding is the office building name. Its presence overrides
// the deny-list keywords, so 中关村资本大厦 stays legal even though it
// contains the denied keyword 中关村.
const primaryBuilding = "中关村资本大厦"

// validPickupLocations are the office building and its recognized
// aliases.
var validPickupLocations = []string{
	"中关村资本大厦",
	"中关村资本大厦北门",
	"海淀区学院南路",
	"学院南路",
	"资本大厦",
}

// invalidLocationKeywords name districts known to be out of policy.
var invalidLocationKeywords = []string{"中关村", "望京", "国贸"}

// IsValidPickupLocation reports whether a pickup location is legal.
// A location matching neither list is rejected: ambiguous input is
// never approved.
func IsValidPickupLocation(location string) bool {
	for _, allowed := range validPickupLocations {
		if strings.Contains(location, allowed) {
			return true
		}
	}

	for _, keyword := range invalidLocationKeywords {
		if strings.Contains(location, keyword) && !strings.Contains(location, primaryBuilding) {
			return false
		}
	}

	// Neither clearly allowed nor clearly denied: default deny.
	return false
}
