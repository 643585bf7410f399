package pubgrub

import "fmt"

// conditionVersionSet resolves a Condition to the VersionSet it denotes.
// termAllowedSet and termForbiddenSet share this lookup and differ only in
// which polarity of Term they accept - the condition itself carries no
// polarity.
func conditionVersionSet(cond Condition) (VersionSet, bool) {
	switch c := cond.(type) {
	case nil:
		return FullVersionSet(), true
	case EqualsCondition:
		return (&VersionIntervalSet{}).Singleton(c.Version), true
	case *EqualsCondition:
		if c == nil {
			return FullVersionSet(), true
		}
		return (&VersionIntervalSet{}).Singleton(c.Version), true
	case *VersionSetCondition:
		if c == nil || c.Set == nil {
			return FullVersionSet(), true
		}
		return c.Set, true
	case VersionSetConverter:
		return c.ToVersionSet(), true
	default:
		return nil, false
	}
}

// termAllowedSet returns the versions a positive term admits. It reports
// false for negative terms and for condition types it doesn't recognize.
func termAllowedSet(term Term) (VersionSet, bool) {
	if !term.Positive {
		return nil, false
	}
	return conditionVersionSet(term.Condition)
}

// termForbiddenSet returns the versions a negative term excludes. It
// reports false for positive terms and for condition types it doesn't
// recognize.
func termForbiddenSet(term Term) (VersionSet, bool) {
	if term.Positive {
		return nil, false
	}
	return conditionVersionSet(term.Condition)
}

// applyTermToAllowed narrows current (an accumulated allowed-version set)
// by one more term, intersecting with the term's allowed set if positive
// or with the complement of its forbidden set if negative.
func applyTermToAllowed(current VersionSet, term Term) (VersionSet, error) {
	if current == nil {
		current = FullVersionSet()
	}

	if term.Positive {
		allowed, ok := termAllowedSet(term)
		if !ok {
			return nil, fmt.Errorf("term %s does not support positive conversion", term)
		}
		return current.Intersection(allowed), nil
	}

	forbidden, ok := termForbiddenSet(term)
	if !ok {
		return nil, fmt.Errorf("term %s does not support negative conversion", term)
	}
	return current.Intersection(forbidden.Complement()), nil
}

// termFromAllowedSet builds the positive term equivalent to "name must be
// in set", collapsing to an EqualsCondition when set contains one version.
func termFromAllowedSet(name Name, set VersionSet) Term {
	if set == nil {
		set = FullVersionSet()
	}

	if version, ok := singletonVersionFromSet(set); ok {
		return Term{Name: name, Condition: EqualsCondition{Version: version}, Positive: true}
	}

	return Term{Name: name, Condition: NewVersionSetCondition(set), Positive: true}
}

// termFromForbiddenSet builds the negative term equivalent to "name must
// not be in set".
func termFromForbiddenSet(name Name, set VersionSet) Term {
	if set == nil {
		set = FullVersionSet()
	}

	return Term{Name: name, Condition: NewVersionSetCondition(set), Positive: false}
}

// setsEqual reports whether a and b contain exactly the same versions,
// independent of how each is represented internally.
func setsEqual(a, b VersionSet) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.IsSubset(b) && b.IsSubset(a)
}
