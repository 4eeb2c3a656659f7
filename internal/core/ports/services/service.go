package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Filing       FilingSvcFacade
	Payment      PaymentSvcFacade
	Message      MessageSvcFacade
	Case         CaseSvcFacade
	User         UserSvcFacade
	Auth         AuthSvcFacade
	Notification NotificationSvc
}
