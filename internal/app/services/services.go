package services

// Services defined in this package:
// - AuthService: registration, login, password reset and the caller's profile
// - ApplicationService: submission, review decisions, documents flag and withdrawal
// - CourseService: public catalog and admin course management
// - UserService: admin user management
// - DashboardService: admin summary figures
// - Notifier: best-effort email, Discord and live feed fan-out
