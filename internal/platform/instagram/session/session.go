package session

// DeviceSettings describes the Android device the client impersonates.
// It is stored inside the session blob under "device_settings".
type DeviceSettings struct {
	AppVersion     string `json:"app_version"`
	AndroidVersion int    `json:"android_version"`
	AndroidRelease string `json:"android_release"`
	DPI            string `json:"dpi"`
	Resolution     string `json:"resolution"`
	Manufacturer   string `json:"manufacturer"`
	Device         string `json:"device"`
	Model          string `json:"model"`
	CPU            string `json:"cpu"`
	VersionCode    string `json:"version_code"`
}

// Default returns the device profile used for fresh logins.
func Default() *DeviceSettings {
	return &DeviceSettings{
		AppVersion:     "269.0.0.18.75",
		AndroidVersion: 26,
		AndroidRelease: "8.0.0",
		DPI:            "480dpi",
		Resolution:     "1080x1920",
		Manufacturer:   "OnePlus",
		Device:         "devitron",
		Model:          "6T Dev",
		CPU:            "qcom",
		VersionCode:    "314665256",
	}
}

// FromMap restores device settings from their decoded JSON form.
// Unknown or mistyped keys are ignored.
func FromMap(ds map[string]any) *DeviceSettings {
	d := &DeviceSettings{}
	if v, ok := ds["app_version"].(string); ok {
		d.AppVersion = v
	}
	switch v := ds["android_version"].(type) {
	case float64:
		d.AndroidVersion = int(v)
	case int:
		d.AndroidVersion = v
	}
	if v, ok := ds["android_release"].(string); ok {
		d.AndroidRelease = v
	}
	if v, ok := ds["dpi"].(string); ok {
		d.DPI = v
	}
	if v, ok := ds["resolution"].(string); ok {
		d.Resolution = v
	}
	if v, ok := ds["manufacturer"].(string); ok {
		d.Manufacturer = v
	}
	if v, ok := ds["device"].(string); ok {
		d.Device = v
	}
	if v, ok := ds["model"].(string); ok {
		d.Model = v
	}
	if v, ok := ds["cpu"].(string); ok {
		d.CPU = v
	}
	if v, ok := ds["version_code"].(string); ok {
		d.VersionCode = v
	}
	return d
}

// ToMap returns the settings in the shape FromMap accepts.
func (d *DeviceSettings) ToMap() map[string]any {
	return map[string]any{
		"app_version":     d.AppVersion,
		"android_version": d.AndroidVersion,
		"android_release": d.AndroidRelease,
		"dpi":             d.DPI,
		"resolution":      d.Resolution,
		"manufacturer":    d.Manufacturer,
		"device":          d.Device,
		"model":           d.Model,
		"cpu":             d.CPU,
		"version_code":    d.VersionCode,
	}
}
