// Package manager runs the two-stage identification pipeline and owns
// per-classifier admission. It is structured into small files by concern:
//
//   - manager.go: core Manager type, constructor, simple getters.
//   - config.go: ManagerConfig and package defaults; NewWithConfig applies defaults.
//   - types.go: lifecycle and pipeline states, Prediction, handle slots.
//   - errors.go: error types and helpers (IsTooBusy, IsNotReady).
//   - load.go: loading the registry and building admission slots.
//   - admission.go: per-handle queueing and evaluation admission.
//   - predict.go: Stage 1, Stage-2 selection, Stage 2 and result assembly.
//   - identify.go: decode + preprocess + predict + optional heatmap.
//   - metrics.go: Prometheus inference metrics.
//   - status_report.go: Status/Snapshot reporting helpers.
//
// Classifiers backed by native Go networks evaluate concurrently up to
// MaxInflight per handle. ONNX-backed classifiers admit one evaluation at a
// time. Both queue up to MaxQueueDepth callers for at most MaxWait before
// rejecting with a too-busy error.
package manager
