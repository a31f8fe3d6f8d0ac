package xmlentity

import (
	"context"
	"io"
	"iter"
	"log/slog"
	"strings"

	"github.com/lestrrat-go/pdebug/v3"
	"github.com/lestrrat-go/xmlentity/catalog"
	"github.com/lestrrat-go/xmlentity/internal/stack"
	"github.com/lestrrat-go/xmlentity/sax"
	"github.com/pkg/errors"
)

// Manager owns the entity state of one parse session: the declared
// entities, the stack of open entities and the resources behind them.
// A Manager is not safe for concurrent use.
type Manager struct {
	table            *EntityTable
	parents          stack.Unique[*ScannedEntity]
	current          *ScannedEntity
	readers          stack.Simple[io.Closer]
	expansionCount   int
	inExternalSubset bool

	handler  sax.EntityHandler
	reporter ErrorReporter
	security SecurityManager
	opener   Opener
	resolver Resolver
	stages   []resolutionStage
	catalog  *catalog.Resolver

	accessExternalDTD string
	supportDTD        bool
	externalGeneral   bool
	externalParameter bool
	warnDuplicate     bool
	strictURI         bool
	bufferSize        int
	useCatalog        bool
	catalogFiles      []string
	catalogPrefer     string
	catalogDefer      bool
	catalogResolve    string
}

// closerFunc adapts a frame's close method to the resource stack
type closerFunc func() error

func (f closerFunc) Close() error {
	return f()
}

// reportedError carries the error an ErrorReporter returned when it
// decided to abort, so that the condition is not reported twice.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string {
	return e.err.Error()
}

func (e *reportedError) Unwrap() error {
	return e.err
}

func New(options ...Option) *Manager {
	m := &Manager{
		table:             NewEntityTable(),
		accessExternalDTD: AccessAll,
		supportDTD:        true,
		externalGeneral:   true,
		externalParameter: true,
		bufferSize:        DefaultBufferSize,
		useCatalog:        true,
		catalogPrefer:     catalog.PreferPublic,
		catalogDefer:      true,
		catalogResolve:    catalog.ResolveContinue,
		reporter:          DefaultErrorReporter(),
	}

	limit := DefaultEntityExpansionLimit
	for _, opt := range options {
		switch opt.Ident() {
		case identAccessExternalDTD{}:
			m.accessExternalDTD = opt.Value().(string)
		case identEntityExpansionLimit{}:
			limit = opt.Value().(int)
		case identSupportDTD{}:
			m.supportDTD = opt.Value().(bool)
		case identExternalGeneralEntities{}:
			m.externalGeneral = opt.Value().(bool)
		case identExternalParameterEntities{}:
			m.externalParameter = opt.Value().(bool)
		case identUseCatalog{}:
			m.useCatalog = opt.Value().(bool)
		case identCatalogFiles{}:
			m.catalogFiles = append(m.catalogFiles, opt.Value().([]string)...)
		case identCatalogPrefer{}:
			m.catalogPrefer = opt.Value().(string)
		case identCatalogDefer{}:
			m.catalogDefer = opt.Value().(bool)
		case identCatalogResolve{}:
			m.catalogResolve = opt.Value().(string)
		case identBufferSize{}:
			m.bufferSize = opt.Value().(int)
		case identEntityResolver{}:
			m.resolver = opt.Value().(Resolver)
		case identEntityHandler{}:
			m.handler = opt.Value().(sax.EntityHandler)
		case identErrorReporter{}:
			m.reporter = opt.Value().(ErrorReporter)
		case identSecurityManager{}:
			m.security = opt.Value().(SecurityManager)
		case identOpener{}:
			m.opener = opt.Value().(Opener)
		case identWarnDuplicateEntity{}:
			m.warnDuplicate = opt.Value().(bool)
		case identStrictURI{}:
			m.strictURI = opt.Value().(bool)
		}
	}

	if m.bufferSize < MinBufferSize {
		m.bufferSize = MinBufferSize
	}
	if m.security == nil {
		m.security = NewSecurityManager(limit)
	}
	if m.opener == nil {
		m.opener = DefaultOpener(nil)
	}
	if m.reporter == nil {
		m.reporter = DefaultErrorReporter()
	}
	m.buildStages()
	return m
}

// Table returns the declarations of this session
func (m *Manager) Table() *EntityTable {
	return m.table
}

func (m *Manager) Entities() iter.Seq2[string, *Entity] {
	return m.table.Entities()
}

func (m *Manager) duplicate(ctx context.Context, name string) error {
	if !m.warnDuplicate {
		return nil
	}
	return m.reporter.Report(ctx, SeverityWarning, &DuplicateEntityError{Name: name})
}

// DeclareInternal registers an internal entity. A repeated name keeps
// the first declaration; the returned error is whatever the reporter
// returned for the duplicate warning.
func (m *Manager) DeclareInternal(ctx context.Context, name, text string) error {
	if !m.table.DeclareInternal(name, text, m.inExternalSubset) {
		return m.duplicate(ctx, name)
	}
	return nil
}

// DeclareExternal registers an external parsed entity. If baseSystemID
// is empty the system id of the nearest open external entity is used.
func (m *Manager) DeclareExternal(ctx context.Context, name, publicID, literalSystemID, baseSystemID string) error {
	if m.table.IsDeclared(name) {
		return m.duplicate(ctx, name)
	}

	if baseSystemID == "" {
		baseSystemID = m.inheritedBase()
	}
	expanded, err := ExpandSystemID(literalSystemID, baseSystemID, m.strictURI)
	if err != nil {
		return errors.Wrapf(err, `failed to declare entity %q`, name)
	}
	m.table.DeclareExternal(name, publicID, literalSystemID, baseSystemID, expanded, m.inExternalSubset)
	return nil
}

func (m *Manager) DeclareUnparsed(ctx context.Context, name, publicID, systemID, baseSystemID, notation string) error {
	if !m.table.DeclareUnparsed(name, publicID, systemID, baseSystemID, notation, m.inExternalSubset) {
		return m.duplicate(ctx, name)
	}
	return nil
}

func (m *Manager) inheritedBase() string {
	if m.current != nil && m.current.id.ExpandedSystemID != "" {
		return m.current.id.ExpandedSystemID
	}
	for i := m.parents.Len() - 1; i >= 0; i-- {
		if s := m.parents.At(i).id.ExpandedSystemID; s != "" {
			return s
		}
	}
	return ""
}

// StartExternalSubset marks subsequent declarations as coming from the
// external subset.
func (m *Manager) StartExternalSubset() {
	m.inExternalSubset = true
}

func (m *Manager) EndExternalSubset() {
	m.inExternalSubset = false
}

func (m *Manager) InExternalSubset() bool {
	return m.inExternalSubset
}

func (m *Manager) IsEntityDeclInExternalSubset(name string) bool {
	return m.table.IsDeclaredInExternalSubset(name)
}

// CurrentEntity returns the frame being read, or nil
func (m *Manager) CurrentEntity() *ScannedEntity {
	return m.current
}

// TopLevelEntity returns the bottom-most open frame, usually the
// document entity.
func (m *Manager) TopLevelEntity() *ScannedEntity {
	if m.parents.Len() > 0 {
		return m.parents.At(0)
	}
	return m.current
}

// Depth is the number of open entities
func (m *Manager) Depth() int {
	if m.current == nil {
		return 0
	}
	return m.parents.Len() + 1
}

func (m *Manager) ExpansionCount() int {
	return m.expansionCount
}

// IsStandalone reports whether the document entity declared
// standalone="yes".
func (m *Manager) IsStandalone() bool {
	top := m.TopLevelEntity()
	if top == nil || !top.document || top.decl == nil {
		return false
	}
	return top.decl.Standalone == "yes"
}

func (m *Manager) notifyStart(ctx context.Context, name string, id *ResourceIdentifier, enc string, augs sax.Augmentations) error {
	if m.handler == nil {
		return nil
	}
	if err := m.handler.StartEntity(ctx, name, id, enc, augs); err != nil && !errors.Is(err, sax.ErrHandlerUnspecified) {
		return err
	}
	return nil
}

func (m *Manager) notifyEnd(ctx context.Context, name string, augs sax.Augmentations) error {
	if m.handler == nil {
		return nil
	}
	if err := m.handler.EndEntity(ctx, name, augs); err != nil && !errors.Is(err, sax.ErrHandlerUnspecified) {
		return err
	}
	return nil
}

// skip tells the handler that the reference to name was not expanded
func (m *Manager) skip(ctx context.Context, name string, id *ResourceIdentifier) StartResult {
	if pdebug.Enabled {
		pdebug.Printf("skipping entity %q", name)
	}
	augs := sax.Augmentations{Skipped: true}
	if err := m.notifyStart(ctx, name, id, "", augs); err != nil {
		return StartResult{Status: StartStatusFatal, Err: err}
	}
	if err := m.notifyEnd(ctx, name, augs); err != nil {
		return StartResult{Status: StartStatusFatal, Err: err}
	}
	return StartResult{Status: StartStatusSkipped}
}

// abort reports err as fatal and skips the reference. The result is
// fatal unless the reporter chose to continue.
func (m *Manager) abort(ctx context.Context, name string, id *ResourceIdentifier, err error) StartResult {
	var reported *reportedError
	if errors.As(err, &reported) {
		m.skip(ctx, name, id)
		return StartResult{Status: StartStatusFatal, Err: reported.err}
	}

	rerr := m.reporter.Report(ctx, SeverityFatal, err)
	res := m.skip(ctx, name, id)
	if rerr != nil {
		return StartResult{Status: StartStatusFatal, Err: rerr}
	}
	return res
}

// recursionPath returns the chain of open entities that starting name
// would close into a loop, or nil.
func (m *Manager) recursionPath(name string) []string {
	if m.current == nil {
		return nil
	}
	if m.current.name == name {
		return []string{name, name}
	}

	i := m.parents.Index(name)
	if i < 0 {
		return nil
	}
	path := make([]string, 0, m.parents.Len()-i+2)
	for ; i < m.parents.Len(); i++ {
		path = append(path, m.parents.At(i).name)
	}
	return append(path, m.current.name, name)
}

func (m *Manager) checkRecursion(ctx context.Context, name string, id *ResourceIdentifier) (StartResult, bool) {
	path := m.recursionPath(name)
	if path == nil {
		return StartResult{}, true
	}
	return m.abort(ctx, name, id, &RecursiveReferenceError{Name: name, Path: path}), false
}

// StartEntity opens the declared entity name and makes it current.
// isGeneral is false for parameter entity references; names starting
// with '%' are always parameter entities. literal is set when the
// reference occurs inside an entity or attribute value.
//
// The result is never an error value: references that cannot be
// expanded are skipped, and the handler sees a start and an end event
// marked as skipped. Fatal results have already been reported.
func (m *Manager) StartEntity(ctx context.Context, isGeneral bool, name string, literal bool) StartResult {
	if pdebug.Enabled {
		g := pdebug.FuncMarker()
		defer g.End()
	}

	entity := m.table.Lookup(name)
	if entity == nil {
		getTraceLogFromContext(ctx).Debug("entity not declared", slog.String("name", name))
		return m.skip(ctx, name, nil)
	}

	id := entity.Identifier()
	external := entity.IsExternal()
	if external {
		parameter := !isGeneral || entity.IsParameter()
		switch {
		case entity.IsUnparsed(),
			!m.supportDTD,
			parameter && !m.externalParameter,
			!parameter && !m.externalGeneral:
			return m.skip(ctx, name, &id)
		}
	}

	if res, ok := m.checkRecursion(ctx, name, &id); !ok {
		return res
	}

	var src *InputSource
	if !external {
		src = &InputSource{CharacterStream: strings.NewReader(entity.Content())}
	} else {
		resolved, err := m.ResolveEntity(ctx, &id)
		switch {
		case errors.Is(err, errIgnoreEntity):
			return m.skip(ctx, name, &id)
		case err != nil:
			return m.abort(ctx, name, &id, err)
		case resolved == nil:
			return m.abort(ctx, name, &id, &UnresolvedEntityError{Name: name, ID: id})
		}

		if !resolved.CreatedByResolver && resolved.SystemID != "" {
			expanded, err := ExpandSystemID(resolved.SystemID, resolved.BaseSystemID, m.strictURI)
			if err != nil {
				return m.abort(ctx, name, &id, errors.Wrapf(err, `failed to expand system id for entity %q`, name))
			}
			if protocol := m.security.CheckAccess(expanded, m.accessExternalDTD); protocol != "" {
				return m.abort(ctx, name, &id, &AccessExternalEntityError{
					SystemID: expanded,
					Protocol: protocol,
					Policy:   m.accessExternalDTD,
				})
			}
		}
		src = resolved
	}

	return m.startEntity(ctx, name, entity, src, literal, external, false, true)
}

// StartEntityWithSource starts name from src, bypassing declaration
// lookup and resolution. The recursion check and the expansion limit
// still apply.
func (m *Manager) StartEntityWithSource(ctx context.Context, name string, src *InputSource, literal, external bool) StartResult {
	id := identifierOf(src)
	if res, ok := m.checkRecursion(ctx, name, &id); !ok {
		return res
	}
	return m.startEntity(ctx, name, m.table.Lookup(name), src, literal, external, false, true)
}

// StartDocumentEntity opens the document itself. Ending it is the
// normal end of input.
func (m *Manager) StartDocumentEntity(ctx context.Context, src *InputSource) StartResult {
	id := identifierOf(src)
	if res, ok := m.checkRecursion(ctx, DocumentEntityName, &id); !ok {
		return res
	}
	return m.startEntity(ctx, DocumentEntityName, nil, src, false, true, true, false)
}

// StartDTDEntity opens the external DTD subset
func (m *Manager) StartDTDEntity(ctx context.Context, src *InputSource) StartResult {
	id := identifierOf(src)
	if res, ok := m.checkRecursion(ctx, DTDEntityName, &id); !ok {
		return res
	}
	return m.startEntity(ctx, DTDEntityName, nil, src, false, true, false, false)
}

func identifierOf(src *InputSource) ResourceIdentifier {
	if src == nil {
		return ResourceIdentifier{}
	}
	return ResourceIdentifier{
		PublicID:        src.PublicID,
		LiteralSystemID: src.SystemID,
		BaseSystemID:    src.BaseSystemID,
	}
}

func (m *Manager) startEntity(ctx context.Context, name string, entity *Entity, src *InputSource, literal, external, document, counted bool) StartResult {
	if pdebug.Enabled {
		g := pdebug.FuncMarker()
		defer g.End()
	}

	id := identifierOf(src)
	if src == nil {
		return m.abort(ctx, name, &id, errors.Wrapf(ErrNilInputSource, `failed to start entity %q`, name))
	}

	// the limit is checked before anything is opened, but an expansion
	// only counts once its source is set up
	if counted && m.security.IsOverLimit(EntityExpansionLimit, m.expansionCount+1) {
		m.expansionCount = 0
		err := &EntityExpansionLimitError{Name: name, Limit: m.security.Limit(EntityExpansionLimit)}
		if rerr := m.reporter.Report(ctx, SeverityFatal, err); rerr != nil {
			m.skip(ctx, name, &id)
			return StartResult{Status: StartStatusFatal, Err: rerr}
		}
	}

	frame, err := m.setupCurrentEntity(ctx, name, src, literal, external, document)
	if err != nil {
		return m.abort(ctx, name, &id, err)
	}
	frame.entity = entity
	if counted {
		m.expansionCount++
	}

	if m.current != nil {
		if err := m.parents.Push(m.current); err != nil {
			_ = frame.close()
			return m.abort(ctx, name, &id, errors.Wrapf(err, `failed to push entity %q`, m.current.name))
		}
	}
	m.readers.Push(closerFunc(frame.close))
	m.current = frame

	if err := m.notifyStart(ctx, name, &frame.id, frame.encoding, sax.Augmentations{}); err != nil {
		m.popFrame()
		_ = frame.close()
		return StartResult{Status: StartStatusFatal, Err: err}
	}

	getTraceLogFromContext(ctx).Debug("entity started",
		slog.String("name", name),
		slog.String("system_id", frame.id.ExpandedSystemID),
		slog.String("encoding", frame.encoding),
		slog.Int("depth", m.Depth()),
	)
	return StartResult{Status: StartStatusStarted, Entity: frame}
}

// popFrame drops the current frame and makes its parent current
func (m *Manager) popFrame() {
	m.readers.PopLast()
	if parent, ok := m.parents.Top(); ok {
		m.parents.PopLast()
		m.current = parent
		return
	}
	m.current = nil
}

// EndEntity closes the current entity and returns to its parent.
// Ending the last open entity returns ErrEOF unless it was the document
// entity.
func (m *Manager) EndEntity(ctx context.Context) error {
	if pdebug.Enabled {
		g := pdebug.FuncMarker()
		defer g.End()
	}

	frame := m.current
	if frame == nil {
		return ErrNoCurrentEntity
	}

	closeErr := frame.close()
	m.popFrame()

	notifyErr := m.notifyEnd(ctx, frame.name, sax.Augmentations{LastEntity: m.current == nil})

	// a failing handler must not hide the close failure
	if closeErr != nil {
		if err := m.reporter.Report(ctx, SeverityError, errors.Wrapf(closeErr, `failed to close entity %q`, frame.name)); err != nil && notifyErr == nil {
			notifyErr = err
		}
	}
	if notifyErr != nil {
		return notifyErr
	}

	if m.current == nil && !frame.document {
		return ErrEOF
	}
	return nil
}

// CloseReaders closes every resource still held by open entities. It
// is meant for abnormal termination; close errors are only logged.
func (m *Manager) CloseReaders(ctx context.Context) {
	tlog := getTraceLogFromContext(ctx)
	for {
		c, ok := m.readers.Top()
		if !ok {
			return
		}
		m.readers.PopLast()
		if err := c.Close(); err != nil {
			tlog.Debug("failed to close reader", slog.String("error", err.Error()))
		}
	}
}

// Reset prepares the Manager for a new document. Declarations, open
// entities and the expansion count are discarded.
func (m *Manager) Reset(ctx context.Context) {
	m.CloseReaders(ctx)
	m.table.clear()
	m.parents.Pop(m.parents.Len())
	m.current = nil
	m.expansionCount = 0
	m.inExternalSubset = false
}
