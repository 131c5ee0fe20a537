package notification

import "net/url"

// ParamURL is the query parameter carrying the order url into the app.
const ParamURL = "notification_url"

// OpenLink builds the deep link that opens the host app, carrying target when set.
// The host's scheme handler receives it and reports the resume.
func OpenLink(scheme, target string) string {
	link := url.URL{
		Scheme: scheme,
		Host:   "open",
	}

	if target != "" {
		link.RawQuery = url.Values{ParamURL: []string{target}}.Encode()
	}

	return link.String()
}

// StopLink builds the deep link fired by the stop action. Desktop toasts do
// not render the action, so the link is served by running alarm-stop.
func StopLink(scheme string) string {
	link := url.URL{
		Scheme: scheme,
		Host:   "alarm",
		Path:   "/stop",
	}

	return link.String()
}
