package model

// DefaultExperiment is the met forcing set used when the configuration
// does not select one.
const DefaultExperiment = "forty-two-site-test"

// DefaultMultiprocess enables in-job concurrency by default.
const DefaultMultiprocess = true

// DefaultPBSConfig returns the default PBS resources for the fluxsite
// job script.
func DefaultPBSConfig() PBSConfig {
	return PBSConfig{
		NCPUs:    18,
		Mem:      "30GB",
		Walltime: "6:00:00",
		Storage:  []string{},
	}
}

// DefaultScienceConfigurations returns the science scenarios used when the
// configuration does not provide any.
func DefaultScienceConfigurations() []ScienceConfig {
	return []ScienceConfig{
		{"cable": map[string]interface{}{"cable_user": map[string]interface{}{
			"GS_SWITCH":     "medlyn",
			"FWSOIL_SWITCH": "Haverd2013",
		}}},
		{"cable": map[string]interface{}{"cable_user": map[string]interface{}{
			"GS_SWITCH":     "leuning",
			"FWSOIL_SWITCH": "Haverd2013",
		}}},
		{"cable": map[string]interface{}{"cable_user": map[string]interface{}{
			"GS_SWITCH":     "medlyn",
			"FWSOIL_SWITCH": "standard",
		}}},
		{"cable": map[string]interface{}{"cable_user": map[string]interface{}{
			"GS_SWITCH":     "leuning",
			"FWSOIL_SWITCH": "standard",
		}}},
	}
}

// DefaultSpatialMetForcings returns the met forcings used by the spatial
// suite when the configuration does not provide any. Each entry maps a
// forcing name to a payu experiment repository configured with that
// forcing.
func DefaultSpatialMetForcings() map[string]string {
	return map[string]string{
		"crujra_access": "https://github.com/CABLE-LSM/cable_example.git",
	}
}
