package permission

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestRequired checks that notification posting is only requested on new platforms.
func TestRequired(t *testing.T) {
	t.Parallel()

	old := Required(32)
	require.Equal(t, []Permission{FineLocation, CoarseLocation, ModifyAudioSettings, WakeLock}, old)

	current := Required(NotificationsMinPlatformVersion)
	require.Len(t, current, 5)
	require.Equal(t, PostNotifications, current[4])
}

// TestMissing checks that already granted permissions are skipped.
func TestMissing(t *testing.T) {
	t.Parallel()

	missing := Missing(Required(34), []Permission{CoarseLocation, WakeLock})
	require.Equal(t, []Permission{FineLocation, ModifyAudioSettings, PostNotifications}, missing)

	require.Empty(t, Missing(Required(30), Required(30)))
}

// TestDenied checks filtering of denied results.
func TestDenied(t *testing.T) {
	t.Parallel()

	denied := Denied([]Result{
		{Permission: FineLocation, Granted: true},
		{Permission: WakeLock, Granted: false},
	})
	require.Equal(t, []Permission{WakeLock}, denied)
	require.Empty(t, Denied(nil))
}
