package builder

// Stage identifies a step of the build pipeline. Stages run strictly in
// order; a failed stage halts the run.
type Stage int

const (
	StageNotStarted Stage = iota
	StageAcquireInstaller
	StageExtract
	StageResolveMetadata
	StageBuildNativeModule
	StagePatchBundle
	StageAssembleTree
	StagePackage
	StageDone
	StageFailed
)

var stageNames = map[Stage]string{
	StageNotStarted:        "not started",
	StageAcquireInstaller:  "acquire installer",
	StageExtract:           "extract",
	StageResolveMetadata:   "resolve metadata",
	StageBuildNativeModule: "build native module",
	StagePatchBundle:       "patch bundle",
	StageAssembleTree:      "assemble tree",
	StagePackage:           "package",
	StageDone:              "done",
	StageFailed:            "failed",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "unknown"
}

// PipelineStages lists the work stages in execution order.
func PipelineStages() []Stage {
	return []Stage{
		StageAcquireInstaller,
		StageExtract,
		StageResolveMetadata,
		StageBuildNativeModule,
		StagePatchBundle,
		StageAssembleTree,
		StagePackage,
	}
}

// StageReporter receives stage transitions as the pipeline advances.
type StageReporter interface {
	StageStarted(s Stage)
	StageFinished(s Stage, err error)
}

type nopReporter struct{}

func (nopReporter) StageStarted(Stage)         {}
func (nopReporter) StageFinished(Stage, error) {}
