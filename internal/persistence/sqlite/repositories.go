package sqlite

// Repositories bundles every repository backed by one gateway.
type Repositories struct {
	Interns      *InternRepository
	Venues       *VenueRepository
	Documents    *DocumentRepository
	Observations *ObservationRepository
	Meetings     *MeetingRepository
	Criteria     *CriteriaRepository
	Grades       *GradeRepository
}

// NewRepositories wires all repositories to gateway.
func NewRepositories(gateway *Gateway) Repositories {
	return Repositories{
		Interns:      NewInternRepository(gateway),
		Venues:       NewVenueRepository(gateway),
		Documents:    NewDocumentRepository(gateway),
		Observations: NewObservationRepository(gateway),
		Meetings:     NewMeetingRepository(gateway),
		Criteria:     NewCriteriaRepository(gateway),
		Grades:       NewGradeRepository(gateway),
	}
}
