package taxi

import (
	"fmt"
	"time"
)

// Accepted pickup-time layouts: plain HH:MM plus the localized 点/时
// spellings, with and without minutes.
var pickupTimeLayouts = []string{
	"15:04",
	"15点04分",
	"15时04分",
	"15点",
	"15时",
}

// Reimbursable window: 21:00 through 05:00 the next morning, both
// boundaries inclusive.
const (
	nightStartMinutes = 21 * 60
	morningEndMinutes = 5 * 60
)

// ValidatePickupTime reports whether the pickup time falls inside the
// reimbursable night window. The window wraps across midnight, so a
// time qualifies when it is at or after 21:00 or at or before 05:00.
// An unparseable time is rejected with its own reason, never approved.
func ValidatePickupTime(pickupTime string) (bool, string) {
	var parsed time.Time
	parsedOK := false
	for _, layout := range pickupTimeLayouts {
		if t, err := time.Parse(layout, pickupTime); err == nil {
			parsed = t
			parsedOK = true
			break
		}
	}

	if !parsedOK {
		return false, "无法识别的时间格式，请使用 HH:MM 格式"
	}

	minutes := parsed.Hour()*60 + parsed.Minute()
	if minutes >= nightStartMinutes || minutes <= morningEndMinutes {
		return true, ""
	}

	return false, fmt.Sprintf("上车时间 %s 不在允许的时间范围内（晚上9点到次日凌晨5点）", pickupTime)
}
