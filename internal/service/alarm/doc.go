// Package alarm implements the alarm controller: the Idle/Alarming state
// machine that owns the looping sound, the persistent notification and the
// auto-stop timer.
package alarm
