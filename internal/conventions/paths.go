package conventions

import "path/filepath"

const (
	// DefaultDataDir is the default benchcab data directory name (relative to home).
	DefaultDataDir = ".benchcab"

	// SrcDir is the subdirectory holding checked out realisations.
	SrcDir = "src"
	// RunDir is the subdirectory holding all run artefacts.
	RunDir = "runs"
	// NamelistDir is the subdirectory holding the base namelist files.
	NamelistDir = "namelists"

	// QsubFile is the generated PBS job script filename.
	QsubFile = "benchmark_cable_qsub.sh"
	// RevisionLogPattern matches the revision log files written at checkout.
	RevisionLogPattern = "rev_number-*.log"

	// CABLE-level files.

	// CableExe is the serial CABLE executable filename.
	CableExe = "cable"
	// CableMPIExe is the MPI CABLE executable filename.
	CableMPIExe = "cable-mpi"
	// CableNML is the main CABLE namelist filename.
	CableNML = "cable.nml"
	// CableVegetationNML is the vegetation parameters namelist filename.
	CableVegetationNML = "pft_params.nml"
	// CableSoilNML is the soil parameters namelist filename.
	CableSoilNML = "cable_soilparm.nml"
	// CableStdout is the filename capturing CABLE standard output.
	CableStdout = "out.txt"
	// CableFixedCO2 is the fixed CO2 concentration applied to fluxsite runs.
	CableFixedCO2 = 400.0

	// Upstream locations.

	// CableGitURL is the upstream CABLE git repository.
	CableGitURL = "https://github.com/CABLE-LSM/CABLE.git"
	// CableSVNRoot is the root URL of the CABLE subversion repository.
	CableSVNRoot = "https://trac.nci.org.au/svn/cable"
	// MetDir holds the PLUMBER2 met forcing files (doi: 10.25914/5fdb0902607e1).
	MetDir = "/g/data/ks32/CLEX_Data/PLUMBER2/v1-0/Met"
	// CableAuxDir holds ancillary CABLE input files.
	CableAuxDir = "/g/data/wd9/BenchMarking/CABLE-AUX_v20240122"

	// Build directories, relative to a realisation checkout.

	// TmpBuildDir is the temporary serial build directory.
	TmpBuildDir = "offline/.tmp"
	// TmpBuildDirMPI is the temporary MPI build directory.
	TmpBuildDirMPI = "offline/.mpitmp"
)

// GridFile is the CABLE grid info file used for fluxsite runs.
var GridFile = filepath.Join(CableAuxDir, "offline", "gridinfo_CSIRO_1x1.nc")

// OfflineSourceFiles lists the glob patterns, relative to a checkout, of
// the Fortran sources staged into the temporary build directory.
var OfflineSourceFiles = []string{
	"science/albedo/*90",
	"science/radiation/*90",
	"science/canopy/*90",
	"science/casa-cnp/*90",
	"science/gw_hydro/*90",
	"science/misc/*90",
	"science/roughness/*90",
	"science/soilsnow/*90",
	"science/landuse/*90",
	"offline/*90",
	"util/*90",
	"params/*90",
	"science/sli/*90",
	"science/pop/*90",
}

// RealisationPath returns the checkout directory for a realisation.
func RealisationPath(workDir, name string) string {
	return filepath.Join(workDir, SrcDir, name)
}

// FluxsiteRunDir returns the root directory for fluxsite runs.
func FluxsiteRunDir(workDir string) string {
	return filepath.Join(workDir, RunDir, "fluxsite")
}

// FluxsiteTasksDir returns the directory the fluxsite tasks run from.
func FluxsiteTasksDir(workDir string) string {
	return filepath.Join(FluxsiteRunDir(workDir), "tasks")
}

// FluxsiteLogsDir returns the directory holding CABLE log files.
func FluxsiteLogsDir(workDir string) string {
	return filepath.Join(FluxsiteRunDir(workDir), "logs")
}

// FluxsiteOutputsDir returns the directory holding CABLE output files.
func FluxsiteOutputsDir(workDir string) string {
	return filepath.Join(FluxsiteRunDir(workDir), "outputs")
}

// FluxsiteAnalysisDir returns the directory holding analysis results.
func FluxsiteAnalysisDir(workDir string) string {
	return filepath.Join(FluxsiteRunDir(workDir), "analysis")
}

// FluxsiteBitwiseCmpDir returns the directory holding bitwise comparison
// reports.
func FluxsiteBitwiseCmpDir(workDir string) string {
	return filepath.Join(FluxsiteAnalysisDir(workDir), "bitwise-comparisons")
}

// SpatialRunDir returns the root directory for spatial runs.
func SpatialRunDir(workDir string) string {
	return filepath.Join(workDir, RunDir, "spatial")
}

// SpatialTasksDir returns the directory holding the payu control
// directories for spatial tasks.
func SpatialTasksDir(workDir string) string {
	return filepath.Join(SpatialRunDir(workDir), "tasks")
}

// PayuLaboratoryDir returns the payu laboratory directory used by spatial
// runs.
func PayuLaboratoryDir(workDir string) string {
	return filepath.Join(workDir, RunDir, "payu-laboratory")
}
