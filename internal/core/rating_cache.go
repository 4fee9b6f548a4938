package core

import (
	"fmt"
	"sort"
	"sync"

	"radruga/pkg/models"
)

// ratingCache is the points-indexed leaderboard. Buckets group users with
// equal points; keys holds the bucket points in descending order.
type ratingCache struct {
	mu      sync.RWMutex
	buckets map[int]map[string]*models.RatingInfo
	keys    []int
	points  map[string]int
}

func newRatingCache() *ratingCache {
	return &ratingCache{
		buckets: make(map[int]map[string]*models.RatingInfo),
		points:  make(map[string]int),
	}
}

// build replaces the whole content
func (c *ratingCache) build(rows []models.RatingProjection) {
	buckets := make(map[int]map[string]*models.RatingInfo)
	points := make(map[string]int, len(rows))
	for _, row := range rows {
		if old, ok := points[row.UserID]; ok {
			delete(buckets[old], row.UserID)
			if len(buckets[old]) == 0 {
				delete(buckets, old)
			}
		}
		b, ok := buckets[row.Points]
		if !ok {
			b = make(map[string]*models.RatingInfo)
			buckets[row.Points] = b
		}
		info := &models.RatingInfo{UserID: row.UserID, NickName: row.NickName, AvatarURL: row.AvatarURL, Points: row.Points}
		if row.LastRatingPlace != nil {
			last := *row.LastRatingPlace
			info.LastPlace = &last
		}
		b[row.UserID] = info
		points[row.UserID] = row.Points
	}
	keys := make([]int, 0, len(buckets))
	for p := range buckets {
		keys = append(keys, p)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(keys)))

	c.mu.Lock()
	c.buckets, c.keys, c.points = buckets, keys, points
	c.mu.Unlock()
}

func (c *ratingCache) insertKey(p int) {
	i := sort.Search(len(c.keys), func(i int) bool { return c.keys[i] <= p })
	if i < len(c.keys) && c.keys[i] == p {
		return
	}
	c.keys = append(c.keys, 0)
	copy(c.keys[i+1:], c.keys[i:])
	c.keys[i] = p
}

func (c *ratingCache) removeKey(p int) {
	i := sort.Search(len(c.keys), func(i int) bool { return c.keys[i] <= p })
	if i < len(c.keys) && c.keys[i] == p {
		c.keys = append(c.keys[:i], c.keys[i+1:]...)
	}
}

// detach must be called with mu held
func (c *ratingCache) detach(userID string) *models.RatingInfo {
	p, ok := c.points[userID]
	if !ok {
		return nil
	}
	b := c.buckets[p]
	info := b[userID]
	delete(b, userID)
	if len(b) == 0 {
		delete(c.buckets, p)
		c.removeKey(p)
	}
	delete(c.points, userID)
	return info
}

// move relocates the user from oldPoints to newPoints. A nil newPoints removes
// the user. It fails when oldPoints disagrees with the cache, which means the
// cache missed an earlier update.
func (c *ratingCache) move(user *models.User, oldPoints, newPoints *int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, present := c.points[user.ID]
	if newPoints != nil && present && current == *newPoints {
		// already applied by a rebuild that read the stored user
		info := c.buckets[current][user.ID]
		info.NickName = user.NickName
		info.AvatarURL = user.AvatarURL
		return nil
	}
	if newPoints == nil && !present {
		return nil
	}
	switch {
	case oldPoints == nil && present:
		return fmt.Errorf("user %s is rated with %d points but had none", user.ID, current)
	case oldPoints != nil && !present:
		return fmt.Errorf("user %s with %d points is missing from the rating", user.ID, *oldPoints)
	case oldPoints != nil && current != *oldPoints:
		return fmt.Errorf("user %s is rated with %d points, expected %d", user.ID, current, *oldPoints)
	}

	info := c.detach(user.ID)
	if newPoints == nil {
		return nil
	}
	if info == nil {
		info = &models.RatingInfo{UserID: user.ID}
		if user.LastRatingPlace != nil {
			last := *user.LastRatingPlace
			info.LastPlace = &last
		}
	}
	info.NickName = user.NickName
	info.AvatarURL = user.AvatarURL
	info.Points = *newPoints

	b, ok := c.buckets[*newPoints]
	if !ok {
		b = make(map[string]*models.RatingInfo)
		c.buckets[*newPoints] = b
		c.insertKey(*newPoints)
	}
	b[user.ID] = info
	c.points[user.ID] = *newPoints
	return nil
}

// sortedBucket must be called with mu held. Ties are broken by last known
// place, then id.
func (c *ratingCache) sortedBucket(p int) []*models.RatingInfo {
	b := c.buckets[p]
	out := make([]*models.RatingInfo, 0, len(b))
	for _, info := range b {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool {
		li, lj := out[i].LastPlace, out[j].LastPlace
		switch {
		case li != nil && lj != nil && *li != *lj:
			return *li < *lj
		case li != nil && lj == nil:
			return true
		case li == nil && lj != nil:
			return false
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

func withPlace(info *models.RatingInfo, place int) models.RatingInfo {
	out := *info
	out.Place = place
	if info.LastPlace != nil {
		last := *info.LastPlace
		out.LastPlace = &last
	}
	return out
}

// leaders returns the first n entries. Users with equal points share a place.
func (c *ratingCache) leaders(n int) []models.RatingInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []models.RatingInfo
	higher := 0
	for _, p := range c.keys {
		for _, info := range c.sortedBucket(p) {
			if len(out) == n {
				return out
			}
			out = append(out, withPlace(info, higher+1))
		}
		higher += len(c.buckets[p])
	}
	return out
}

// neighbors returns the user's bucket together with the buckets directly
// above and below it, or nil when the user is not rated.
func (c *ratingCache) neighbors(userID string) []models.RatingInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.points[userID]
	if !ok {
		return nil
	}
	idx := sort.Search(len(c.keys), func(i int) bool { return c.keys[i] <= p })

	higher := 0
	for _, k := range c.keys[:max(idx-1, 0)] {
		higher += len(c.buckets[k])
	}
	var out []models.RatingInfo
	for i := max(idx-1, 0); i <= idx+1 && i < len(c.keys); i++ {
		k := c.keys[i]
		for _, info := range c.sortedBucket(k) {
			out = append(out, withPlace(info, higher+1))
		}
		higher += len(c.buckets[k])
	}
	return out
}

// rank returns the place of the user
func (c *ratingCache) rank(userID string) (models.UserRank, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.points[userID]
	if !ok {
		return models.UserRank{}, false
	}
	higher := 0
	for _, k := range c.keys {
		if k <= p {
			break
		}
		higher += len(c.buckets[k])
	}
	return models.UserRank{UserID: userID, Points: p, Place: higher + 1}, true
}

// places returns the current place of every rated user
func (c *ratingCache) places() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]int, len(c.points))
	higher := 0
	for _, k := range c.keys {
		for id := range c.buckets[k] {
			out[id] = higher + 1
		}
		higher += len(c.buckets[k])
	}
	return out
}

// setProfile updates the display fields of a rated user
func (c *ratingCache) setProfile(userID string, nickName, avatarURL *string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.points[userID]
	if !ok {
		return false
	}
	info := c.buckets[p][userID]
	if nickName != nil {
		info.NickName = *nickName
	}
	if avatarURL != nil {
		info.AvatarURL = *avatarURL
	}
	return true
}

func (c *ratingCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.points)
}
