package permission

// Permission is a runtime permission identifier.
type Permission string

const (
	// FineLocation grants precise location.
	FineLocation Permission = "ACCESS_FINE_LOCATION"
	// CoarseLocation grants approximate location.
	CoarseLocation Permission = "ACCESS_COARSE_LOCATION"
	// ModifyAudioSettings allows changing the alarm volume stream.
	ModifyAudioSettings Permission = "MODIFY_AUDIO_SETTINGS"
	// WakeLock keeps the device awake while the alarm sounds.
	WakeLock Permission = "WAKE_LOCK"
	// PostNotifications allows showing the alarm notification.
	PostNotifications Permission = "POST_NOTIFICATIONS"
)

// NotificationsMinPlatformVersion is the first platform version where
// posting notifications needs a runtime grant.
const NotificationsMinPlatformVersion = 33

// Result is the outcome of a single permission request.
type Result struct {
	Permission Permission
	Granted    bool
}

// Required returns the permissions requested at launch for the given platform version.
func Required(platformVersion int) []Permission {
	required := []Permission{
		FineLocation,
		CoarseLocation,
		ModifyAudioSettings,
		WakeLock,
	}

	if platformVersion >= NotificationsMinPlatformVersion {
		required = append(required, PostNotifications)
	}

	return required
}

// Missing returns the permissions from required that are not in granted, keeping order.
func Missing(required []Permission, granted []Permission) []Permission {
	have := make(map[Permission]struct{}, len(granted))
	for _, p := range granted {
		have[p] = struct{}{}
	}

	missing := make([]Permission, 0, len(required))

	for _, p := range required {
		if _, ok := have[p]; !ok {
			missing = append(missing, p)
		}
	}

	return missing
}

// Denied filters results down to the permissions that were not granted.
func Denied(results []Result) []Permission {
	var denied []Permission

	for _, r := range results {
		if !r.Granted {
			denied = append(denied, r.Permission)
		}
	}

	return denied
}
