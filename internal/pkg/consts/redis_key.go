package consts

const (
	// TrackingDirtyProfilesKey holds profile ids the Tracking Pipeline
	// wrote a snapshot for today; the Daily Analytics runner drains it
	// by renaming the set, reading its members, then deleting the copy.
	TrackingDirtyProfilesKey = "tracking:daily:dirty"

	CookiePoolStatusKeyPrefix = "cookiepool:"
)

const (
	DailyAnalyticsLock = "lock:daily:analytics"
)
