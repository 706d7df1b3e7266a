package controllers

import (
	"context"
	"time"

	"courseplatform/backend/catalog"
	"courseplatform/backend/models"
	"courseplatform/backend/repository"
	"courseplatform/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// CatalogController serves the read side of the catalog. Every handler works
// on one fetched snapshot.
type CatalogController struct {
	Catalog  *catalog.Aggregator
	Learners *repository.LearnerRepository
	Now      func() time.Time
}

func NewCatalogController(agg *catalog.Aggregator, learners *repository.LearnerRepository) *CatalogController {
	return &CatalogController{Catalog: agg, Learners: learners, Now: time.Now}
}

// courseCard is one course as shown to the current caller.
type courseCard struct {
	models.Course
	Price     catalog.Quote `json:"price"`
	Enrolled  bool          `json:"enrolled"`
	CanEnroll bool          `json:"can_enroll"`
}

type learnerState struct {
	enrolled     map[string]bool
	annualMember bool
}

func (cc *CatalogController) learnerState(ctx context.Context, p utils.Principal) (learnerState, error) {
	st := learnerState{enrolled: map[string]bool{}}
	if !p.Authenticated() {
		return st, nil
	}
	enrolled, err := cc.Learners.EnrolledCourseIDs(ctx, p.UserID)
	if err != nil {
		return st, err
	}
	st.enrolled = enrolled
	user, err := cc.Learners.User(ctx, p.UserID)
	if err != nil && !utils.IsKind(err, utils.KindNotFound) {
		return st, err
	}
	if user != nil {
		st.annualMember = user.ActiveAnnualMember(cc.Now())
	}
	return st, nil
}

func (cc *CatalogController) card(c models.Course, snap *catalog.Snapshot, p utils.Principal, st learnerState) courseCard {
	enrolled := st.enrolled[c.ID]
	return courseCard{
		Course:    c,
		Price:     catalog.PriceCourse(c, snap.ActivePromotions, cc.Now()),
		Enrolled:  enrolled,
		CanEnroll: catalog.CanEnroll(p, enrolled, st.annualMember),
	}
}

// visibleCourse finds a course in the snapshot. Admins see everything;
// everyone else only published, non-deleted courses.
func visibleCourse(snap *catalog.Snapshot, id string, p utils.Principal) (models.Course, error) {
	lookup, err := catalog.FlattenForLookup(snap)
	if err != nil {
		return models.Course{}, utils.Server("Catalog is inconsistent", err)
	}
	course, ok := lookup[id]
	if !ok || (p.Role != utils.RoleAdmin && !catalog.Visible(course)) {
		return models.Course{}, utils.NotFound("Course not found")
	}
	return course, nil
}

func lecturersFor(snap *catalog.Snapshot, course models.Course) []models.Lecturer {
	if course.Kind == models.KindMain {
		return catalog.FindRelevantLecturers(snap, course)
	}
	return catalog.LecturersForCourse(snap, course.ID)
}

// GetCatalog returns the snapshot. Non-admins get the learner view.
func (cc *CatalogController) GetCatalog(c *fiber.Ctx) error {
	snap, err := cc.Catalog.FetchCatalog(c.UserContext())
	if err != nil {
		return utils.Fail(c, err, fiber.Map{"status": catalog.StatusError})
	}
	if utils.CurrentPrincipal(c).Role != utils.RoleAdmin {
		snap = catalog.LearnerView(snap)
	}
	return utils.OK(c, snap, fiber.Map{"status": catalog.StatusOf(snap, nil)})
}

// GetCourses lists visible courses with prices, split by whether the caller
// is enrolled.
func (cc *CatalogController) GetCourses(c *fiber.Ctx) error {
	ctx := c.UserContext()
	snap, err := cc.Catalog.FetchCatalog(ctx)
	if err != nil {
		return utils.Fail(c, err, fiber.Map{"status": catalog.StatusError})
	}
	view := catalog.LearnerView(snap)
	p := utils.CurrentPrincipal(c)
	st, err := cc.learnerState(ctx, p)
	if err != nil {
		return utils.Fail(c, err)
	}

	split := catalog.SplitByEnrollment(catalog.Listing(view), st.enrolled)
	enrolled := make([]courseCard, 0, len(split.Enrolled))
	for _, course := range split.Enrolled {
		enrolled = append(enrolled, cc.card(course, view, p, st))
	}
	available := make([]courseCard, 0, len(split.NotEnrolled))
	for _, course := range split.NotEnrolled {
		available = append(available, cc.card(course, view, p, st))
	}

	return utils.OK(c, fiber.Map{
		"enrolled":           enrolled,
		"available":          available,
		"topThreeSubCourses": view.TopThreeSubCourses,
	}, fiber.Map{"status": catalog.StatusOf(view, nil)})
}

func (cc *CatalogController) GetCourse(c *fiber.Ctx) error {
	ctx := c.UserContext()
	snap, err := cc.Catalog.FetchCatalog(ctx)
	if err != nil {
		return utils.Fail(c, err)
	}
	p := utils.CurrentPrincipal(c)
	course, err := visibleCourse(snap, c.Params("id"), p)
	if err != nil {
		return utils.Fail(c, err)
	}
	st, err := cc.learnerState(ctx, p)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.Map{
		"course":    cc.card(course, snap, p, st),
		"lecturers": lecturersFor(snap, course),
	})
}

func (cc *CatalogController) GetPrice(c *fiber.Ctx) error {
	snap, err := cc.Catalog.FetchCatalog(c.UserContext())
	if err != nil {
		return utils.Fail(c, err)
	}
	course, err := visibleCourse(snap, c.Params("id"), utils.CurrentPrincipal(c))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, catalog.PriceCourse(course, snap.ActivePromotions, cc.Now()))
}

func (cc *CatalogController) GetCourseLecturers(c *fiber.Ctx) error {
	snap, err := cc.Catalog.FetchCatalog(c.UserContext())
	if err != nil {
		return utils.Fail(c, err)
	}
	course, err := visibleCourse(snap, c.Params("id"), utils.CurrentPrincipal(c))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, lecturersFor(snap, course))
}

func (cc *CatalogController) Enroll(c *fiber.Ctx) error {
	ctx := c.UserContext()
	snap, err := cc.Catalog.FetchCatalog(ctx)
	if err != nil {
		return utils.Fail(c, err)
	}
	p := utils.CurrentPrincipal(c)
	course, err := visibleCourse(snap, c.Params("id"), p)
	if err != nil {
		return utils.Fail(c, err)
	}
	st, err := cc.learnerState(ctx, p)
	if err != nil {
		return utils.Fail(c, err)
	}
	if st.enrolled[course.ID] {
		return utils.Fail(c, utils.Conflict("Already enrolled in %s", course.ID))
	}
	if !catalog.CanEnroll(p, false, st.annualMember) {
		return utils.Fail(c, utils.Forbidden("Enrollment is not available for this account"))
	}
	enrollment, err := cc.Learners.Enroll(ctx, p.UserID, course.ID)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Created(c, enrollment)
}

// GetCertificates returns the caller's certificates grouped into main and
// sub-course buckets.
func (cc *CatalogController) GetCertificates(c *fiber.Ctx) error {
	ctx := c.UserContext()
	snap, err := cc.Catalog.FetchCatalog(ctx)
	if err != nil {
		return utils.Fail(c, err)
	}
	lookup, err := catalog.FlattenForLookup(snap)
	if err != nil {
		return utils.Fail(c, utils.Server("Catalog is inconsistent", err))
	}
	certs, err := cc.Learners.Certificates(ctx, utils.CurrentPrincipal(c).UserID)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, catalog.BucketCertificates(lookup, certs))
}
