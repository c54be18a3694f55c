// Package httpapi provides the REST surface of the TalentFlow service.
//
// All endpoints exchange a uniform JSON envelope: {"success":true,"data":...}
// on success, {"success":false,"message","error","errors?"} on failure. The
// route table:
//   - GET/POST /api/jobs, GET/PATCH/DELETE /api/jobs/{id}, and
//     PATCH /api/jobs/{id}/reorder exchange the `jobDTO` payload defined in
//     job_handler.go.
//   - GET/POST /api/candidates, GET/PATCH/DELETE /api/candidates/{id},
//     GET /api/candidates/{id}/timeline, and POST /api/candidates/{id}/notes
//     exchange the `candidateDTO` and `eventDTO` payloads defined in
//     candidate_handler.go.
//   - GET/PUT /api/assessments/{jobId} and POST /api/assessments/{jobId}/submit
//     exchange the `assessmentDTO` and `responseDTO` payloads defined in
//     assessment_handler.go.
//   - POST /api/auth/login, /api/auth/signup, /api/auth/logout exchange the
//     `sessionDTO` payload defined in auth_handler.go. No session is validated
//     on other routes; expiry is enforced by the client.
//   - GET/POST /api/notifications, PATCH /api/notifications/{id}/read,
//     PATCH /api/notifications/mark-all-read, DELETE /api/notifications/{id},
//     and GET /api/notifications/stats exchange the `notificationDTO` payload
//     defined in notification_handler.go.
//   - GET /metrics and GET /healthz serve operations traffic and bypass fault
//     injection.
//
// A FaultInjector sits ahead of every /api handler, adding seeded artificial
// latency and occasional 503 responses per route policy.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package httpapi
