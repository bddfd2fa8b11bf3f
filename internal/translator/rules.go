package translator

// Rule is one dependency rule of the generated Makefile. Target and
// Prereqs hold canonical (make-target-escaped) paths; the canonical form is
// the identity used for deduplication and for link-prerequisite lookups.
type Rule struct {
	Target  string
	Prereqs []string
	Recipe  []string
}

// ruleTable tracks every registered rule keyed by canonical target.
// Insertion is first-wins: a later rule for an already-present target is a
// no-op, matching make's semantics when the same object is described twice
// (e.g. by a driver-level and a per-file compile record).
type ruleTable struct {
	rules map[string]*Rule
}

func newRuleTable() *ruleTable {
	return &ruleTable{rules: make(map[string]*Rule)}
}

// Add registers the rule unless its target is already present. Reports
// whether the rule was inserted.
func (t *ruleTable) Add(r *Rule) bool {
	if _, present := t.rules[r.Target]; present {
		return false
	}

	t.rules[r.Target] = r

	return true
}

// Has reports whether a rule is registered for the canonical target.
func (t *ruleTable) Has(target string) bool {
	_, present := t.rules[target]

	return present
}

// productList is the ordered set of linked products (executables and
// dynamic libraries, never plain objects) in first-seen order. It becomes
// the prerequisite list of the terminal aggregate rule.
type productList struct {
	seen  map[string]struct{}
	order []string
}

func newProductList() *productList {
	return &productList{seen: make(map[string]struct{})}
}

func (p *productList) Add(target string) {
	if _, dup := p.seen[target]; dup {
		return
	}

	p.seen[target] = struct{}{}
	p.order = append(p.order, target)
}

func (p *productList) Targets() []string {
	return p.order
}
