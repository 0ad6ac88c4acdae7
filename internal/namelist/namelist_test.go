package namelist_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cable-lsm/benchcab/internal/namelist"
)

func TestParse(t *testing.T) {
	tests := map[string]struct {
		input  string
		expNml namelist.Namelist
		expErr bool
	}{
		"A simple group should parse": {
			input: `&cable
    spinup = .false.
    fixedco2 = 400.0
/
`,
			expNml: namelist.Namelist{
				"cable": {
					"spinup":   false,
					"fixedco2": 400.0,
				},
			},
		},

		"Derived type members should nest": {
			input: `&cable
    filename%met = '/path/to/met.nc'
    filename%out = '/path/to/out.nc'
    output%restart = .false.
/
`,
			expNml: namelist.Namelist{
				"cable": {
					"filename": map[string]interface{}{
						"met": "/path/to/met.nc",
						"out": "/path/to/out.nc",
					},
					"output": map[string]interface{}{
						"restart": false,
					},
				},
			},
		},

		"Keys should be lower cased": {
			input: `&cable
    cable_user%GS_SWITCH = 'medlyn'
/
`,
			expNml: namelist.Namelist{
				"cable": {
					"cable_user": map[string]interface{}{
						"gs_switch": "medlyn",
					},
				},
			},
		},

		"Comments and blank lines should be ignored": {
			input: `! main configuration
&cable

    spinup = .false.  ! no spinup
/
`,
			expNml: namelist.Namelist{
				"cable": {"spinup": false},
			},
		},

		"Comma separated values should become lists": {
			input: `&params
    levels = 1, 2, 3
    names = 'a', 'b'
/
`,
			expNml: namelist.Namelist{
				"params": {
					"levels": []interface{}{1, 2, 3},
					"names":  []interface{}{"a", "b"},
				},
			},
		},

		"Quoted strings should keep spaces and exclamation marks": {
			input: `&cable
    filename%restart_out = ' '
    comment = 'watch out!'
/
`,
			expNml: namelist.Namelist{
				"cable": {
					"filename": map[string]interface{}{"restart_out": " "},
					"comment":  "watch out!",
				},
			},
		},

		"Multiple groups should parse": {
			input: `&cable
    spinup = .false.
/
&cable_user
    diag = .true.
/
`,
			expNml: namelist.Namelist{
				"cable":      {"spinup": false},
				"cable_user": {"diag": true},
			},
		},

		"An unterminated group should fail": {
			input: `&cable
    spinup = .false.
`,
			expErr: true,
		},

		"A parameter outside a group should fail": {
			input:  "spinup = .false.\n",
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			nml, err := namelist.Parse(strings.NewReader(test.input))

			if test.expErr {
				assert.Error(err)
			} else {
				assert.NoError(err)
				assert.Equal(test.expNml, nml)
			}
		})
	}
}

func TestWrite(t *testing.T) {
	tests := map[string]struct {
		nml    namelist.Namelist
		expOut string
	}{
		"Parameters are written sorted with typed literals": {
			nml: namelist.Namelist{
				"cable": {
					"spinup":   false,
					"fixedco2": 400.0,
					"ntiles":   17,
					"filename": map[string]interface{}{
						"met":         "/path/met.nc",
						"restart_out": " ",
					},
				},
			},
			expOut: `&cable
    filename%met = '/path/met.nc'
    filename%restart_out = ' '
    fixedco2 = 400.0
    ntiles = 17
    spinup = .false.
/
`,
		},

		"Groups are written sorted": {
			nml: namelist.Namelist{
				"cable_user": {"diag": true},
				"cable":      {"spinup": false},
			},
			expOut: `&cable
    spinup = .false.
/
&cable_user
    diag = .true.
/
`,
		},

		"Lists are comma separated and quotes escaped": {
			nml: namelist.Namelist{
				"params": {
					"levels": []interface{}{1, 2, 3},
					"name":   "it's",
				},
			},
			expOut: `&params
    levels = 1, 2, 3
    name = 'it''s'
/
`,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			var b strings.Builder
			err := namelist.Write(&b, test.nml)

			assert.NoError(err)
			assert.Equal(test.expOut, b.String())
		})
	}
}

func TestParseWriteRoundTrip(t *testing.T) {
	require := require.New(t)

	input := `&cable
    filename%met = '/g/data/met/AU-Tum.nc'
    filename%restart_out = ' '
    fixedco2 = 400.0
    output%restart = .false.
    spinup = .false.
/
`

	nml, err := namelist.Parse(strings.NewReader(input))
	require.NoError(err)

	var b strings.Builder
	require.NoError(namelist.Write(&b, nml))
	assert.Equal(t, input, b.String())
}

func TestPatch(t *testing.T) {
	t.Run("Patching a missing file creates it", func(t *testing.T) {
		require := require.New(t)

		path := filepath.Join(t.TempDir(), "cable.nml")
		err := namelist.Patch(path, map[string]interface{}{
			"cable": map[string]interface{}{"spinup": false},
		})
		require.NoError(err)

		nml, err := namelist.Read(path)
		require.NoError(err)
		assert.Equal(t, namelist.Namelist{"cable": {"spinup": false}}, nml)
	})

	t.Run("Patching merges nested parameters and keeps existing ones", func(t *testing.T) {
		require := require.New(t)

		path := filepath.Join(t.TempDir(), "cable.nml")
		base := `&cable
    cable_user%fwsoil_switch = 'standard'
    cable_user%gs_switch = 'leuning'
    spinup = .true.
/
`
		require.NoError(os.WriteFile(path, []byte(base), 0o644))

		err := namelist.Patch(path, map[string]interface{}{
			"cable": map[string]interface{}{
				"cable_user": map[string]interface{}{"GS_SWITCH": "medlyn"},
				"spinup":     false,
			},
		})
		require.NoError(err)

		nml, err := namelist.Read(path)
		require.NoError(err)
		assert.Equal(t, namelist.Namelist{
			"cable": {
				"cable_user": map[string]interface{}{
					"fwsoil_switch": "standard",
					"gs_switch":     "medlyn",
				},
				"spinup": false,
			},
		}, nml)
	})

	t.Run("Patching adds new groups", func(t *testing.T) {
		require := require.New(t)

		path := filepath.Join(t.TempDir(), "cable.nml")
		require.NoError(os.WriteFile(path, []byte("&cable\n    spinup = .false.\n/\n"), 0o644))

		err := namelist.Patch(path, map[string]interface{}{
			"cable_user": map[string]interface{}{"diag": true},
		})
		require.NoError(err)

		nml, err := namelist.Read(path)
		require.NoError(err)
		assert.Equal(t, namelist.Namelist{
			"cable":      {"spinup": false},
			"cable_user": {"diag": true},
		}, nml)
	})

	t.Run("A non mapping group fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cable.nml")
		err := namelist.Patch(path, map[string]interface{}{"cable": "not-a-map"})
		assert.Error(t, err)
	})
}

func TestPatchRemove(t *testing.T) {
	t.Run("Removing a nested parameter keeps its siblings", func(t *testing.T) {
		require := require.New(t)

		path := filepath.Join(t.TempDir(), "cable.nml")
		base := `&cable
    cable_user%gs_switch = 'medlyn'
    cable_user%ssnow_potev = 'P-M'
    spinup = .false.
/
`
		require.NoError(os.WriteFile(path, []byte(base), 0o644))

		err := namelist.PatchRemove(path, map[string]interface{}{
			"cable": map[string]interface{}{
				"cable_user": map[string]interface{}{"ssnow_potev": ""},
			},
		})
		require.NoError(err)

		nml, err := namelist.Read(path)
		require.NoError(err)
		assert.Equal(t, namelist.Namelist{
			"cable": {
				"cable_user": map[string]interface{}{"gs_switch": "medlyn"},
				"spinup":     false,
			},
		}, nml)
	})

	t.Run("Removing a missing parameter fails", func(t *testing.T) {
		require := require.New(t)

		path := filepath.Join(t.TempDir(), "cable.nml")
		require.NoError(os.WriteFile(path, []byte("&cable\n    spinup = .false.\n/\n"), 0o644))

		err := namelist.PatchRemove(path, map[string]interface{}{
			"cable": map[string]interface{}{"missing": ""},
		})
		assert.Error(t, err)
	})
}
