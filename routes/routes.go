package routes

import (
	"learnhub_go/controllers"
	"learnhub_go/middleware"
	"learnhub_go/services"
	"learnhub_go/storage"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App, store storage.Backend, archiver *services.AuditArchiveService) {
	// Initialize controllers
	authController := &controllers.AuthController{}
	userController := &controllers.UserController{}
	courseController := &controllers.CourseController{Store: store}
	enrollmentController := &controllers.EnrollmentController{}
	materialController := &controllers.MaterialController{Store: store}
	lectureController := &controllers.LectureController{Store: store}
	meetingController := &controllers.MeetingController{}
	noticeController := &controllers.NoticeController{}
	activityController := &controllers.ActivityController{Archiver: archiver}
	reportController := &controllers.ReportController{}

	// API group
	api := app.Group("/api")

	// Public routes (no authentication required)
	public := api.Group("/public")
	public.Get("/courses", courseController.GetCourses)
	public.Get("/courses/:id", courseController.GetCourse)

	// Authentication routes
	auth := api.Group("/auth")
	auth.Post("/register", authController.Register)
	auth.Post("/login", authController.Login)
	auth.Post("/forgot-password", authController.RequestPasswordReset)
	auth.Post("/reset-password", authController.ResetPasswordWithToken)
	auth.Get("/profile", middleware.JWTMiddleware(), authController.GetProfile)

	// Protected routes (require authentication)
	protected := api.Group("/", middleware.JWTMiddleware())

	protected.Get("/profile", authController.GetProfile)
	protected.Put("/profile/password", authController.ChangePassword)
	protected.Post("/auth/logout", authController.Logout)

	// User management
	users := protected.Group("/users", middleware.RequireCapability(middleware.CapUserManage))
	users.Get("/", userController.GetUsers)
	users.Get("/:id", userController.GetUser)
	users.Post("/", authController.Register)
	users.Put("/:id", userController.UpdateUser)
	users.Delete("/:id", userController.DeleteUser)
	users.Get("/:id/activities", middleware.RequireCapability(middleware.CapActivityView), activityController.GetUserActivities)

	// Courses
	courses := protected.Group("/courses")
	courses.Get("/", courseController.GetCourses)
	courses.Get("/:id", courseController.GetCourse)
	courses.Post("/", middleware.RequireCapability(middleware.CapCourseCreate), courseController.CreateCourse)
	courses.Put("/:id", middleware.RequireCapability(middleware.CapCourseUpdate), middleware.RequireCourseOwnership(), courseController.UpdateCourse)
	courses.Delete("/:id", middleware.RequireCapability(middleware.CapCourseDelete), middleware.RequireCourseOwnership(), courseController.DeleteCourse)
	courses.Put("/:id/teachers", middleware.RequireCapability(middleware.CapCourseAssignTeachers), courseController.SetCourseTeachers)

	// Enrollments
	courses.Post("/:id/enroll", middleware.RequireCapability(middleware.CapEnrollSelf), enrollmentController.EnrollSelf)
	courses.Delete("/:id/enroll", middleware.RequireCapability(middleware.CapEnrollSelf), enrollmentController.UnenrollSelf)
	courses.Get("/:id/enrollments", middleware.RequireCapability(middleware.CapEnrollmentManage), enrollmentController.GetCourseEnrollments)

	enrollments := protected.Group("/enrollments")
	enrollments.Get("/my", enrollmentController.GetMyEnrollments)
	enrollments.Post("/", middleware.RequireCapability(middleware.CapEnrollmentManage), enrollmentController.EnrollStudent)
	enrollments.Post("/bulk", middleware.RequireCapability(middleware.CapEnrollmentManage), enrollmentController.BulkEnroll)
	enrollments.Post("/:id/approve", middleware.RequireCapability(middleware.CapEnrollmentManage), enrollmentController.ApproveEnrollment)
	enrollments.Delete("/:id", middleware.RequireCapability(middleware.CapEnrollmentManage), enrollmentController.Unenroll)

	// Materials
	courses.Get("/:id/materials", materialController.GetCourseMaterials)
	courses.Post("/:id/materials", middleware.RequireCapability(middleware.CapMaterialUpload), middleware.RequireCourseOwnership(), materialController.UploadMaterial)

	materials := protected.Group("/materials")
	materials.Get("/:id/download", materialController.DownloadMaterial)
	materials.Put("/:id", middleware.RequireCapability(middleware.CapMaterialUpdate), materialController.UpdateMaterial)
	materials.Delete("/:id", middleware.RequireCapability(middleware.CapMaterialDelete), materialController.DeleteMaterial)

	// Lectures
	courses.Get("/:id/lectures", lectureController.GetCourseLectures)
	courses.Post("/:id/lectures", middleware.RequireCapability(middleware.CapLectureCreate), middleware.RequireCourseOwnership(), lectureController.CreateLecture)

	lectures := protected.Group("/lectures")
	lectures.Get("/:id/recording", lectureController.DownloadRecording)
	lectures.Post("/:id/recording", middleware.RequireCapability(middleware.CapLectureUploadRecording), lectureController.UploadRecording)
	lectures.Put("/:id", middleware.RequireCapability(middleware.CapLectureUpdate), lectureController.UpdateLecture)
	lectures.Delete("/:id", middleware.RequireCapability(middleware.CapLectureDelete), lectureController.DeleteLecture)

	// Meetings
	courses.Get("/:id/meetings", meetingController.GetCourseMeetings)
	courses.Post("/:id/meetings", middleware.RequireCapability(middleware.CapMeetingCreate), middleware.RequireCourseOwnership(), meetingController.CreateMeeting)

	meetings := protected.Group("/meetings")
	meetings.Put("/:id", middleware.RequireCapability(middleware.CapMeetingUpdate), middleware.RequireMeetingOwnership(), meetingController.UpdateMeeting)
	meetings.Delete("/:id", middleware.RequireCapability(middleware.CapMeetingDelete), middleware.RequireMeetingOwnership(), meetingController.DeleteMeeting)

	// Notices
	notices := protected.Group("/notices")
	notices.Get("/", noticeController.GetNotices)
	notices.Get("/:id", noticeController.GetNotice)
	notices.Post("/", middleware.RequireCapability(middleware.CapNoticeCreate), noticeController.CreateNotice)
	notices.Put("/:id", middleware.RequireCapability(middleware.CapNoticeUpdate), middleware.RequireNoticeOwnership(), noticeController.UpdateNotice)
	notices.Delete("/:id", middleware.RequireCapability(middleware.CapNoticeDelete), middleware.RequireNoticeOwnership(), noticeController.DeleteNotice)

	// Activity audit trail
	activities := protected.Group("/activities", middleware.RequireCapability(middleware.CapActivityView))
	activities.Get("/", activityController.GetActivities)
	activities.Get("/archives", activityController.GetArchives)
	activities.Get("/archives/:id/download", activityController.DownloadArchive)
	activities.Get("/entity/:resource/:id", activityController.GetEntityActivities)
	activities.Get("/user/:id", activityController.GetUserActivities)

	// Reports
	reports := protected.Group("/reports", middleware.RequireCapability(middleware.CapReportGenerate))
	reports.Get("/overview", reportController.GetOverview)
	reports.Get("/export", reportController.ExportCourseReport)
}
