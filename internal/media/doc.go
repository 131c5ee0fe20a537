// Package media plays the looping alarm sound.
//
// A Player acquires a Playback, the native resource that must be released
// once the alarm is silenced. Two players exist: CommandPlayer loops an
// external audio command, BeepPlayer loops a system beep through beeep.
package media
