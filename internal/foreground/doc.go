// Package foreground answers whether the host application is the task the
// user is looking at.
//
// Tracker follows lifecycle reports (resume/pause) sent by the application.
// ProcessDetector checks the process table via go-ps. Chain trusts a pause
// report but confirms a resume against the process table. Every detector
// biases toward "background": when in doubt the alarm rings.
package foreground
