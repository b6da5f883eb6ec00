// Package offboard provides an employee offboarding workflow engine driven by
// signed, stateless action tokens.
//
// A resignation moves through a fixed chain of approvals and operator steps:
//
//   - leader and regional head approve or reject through emailed links
//   - HR schedules, skips or records the exit interview through tokenized forms
//   - IT clears assets, HR checks medical and notifies the vendor, then finalizes
//
// Every link embeds a token that carries the submission, role and action it
// authorizes; nothing is stored on issue. The Service facade wires the token,
// workflow, form, notification and HTTP layers from a single Config:
//
//	cfg, _ := offboard.LoadConfig(ctx, "config.yaml")
//	srv, _ := offboard.New(ctx, cfg)
//	srv.Start(ctx)
//	defer srv.Shutdown(ctx)
//	_, _ = srv.Submit(ctx, submission)
//	http.ListenAndServe(cfg.HTTP.Addr, srv.Handler())
package offboard
