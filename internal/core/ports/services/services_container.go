package services

// ServiceContainer holds all service facades for injection into handlers.
type ServiceContainer struct {
	Chart     ChartSvcFacade
	Journal   JournalSvcFacade
	Exercise  ExerciseSvcFacade
	Entry     EntrySvcFacade
	Integrity IntegritySvcFacade
	Audit     AuditSvcFacade
}
