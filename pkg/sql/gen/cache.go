// Copyright 2021 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package gen

import (
	"container/list"
	"sync"
)

// shapeCache memoizes lookup-source factories by shape key. Bounded count,
// least-recently-used eviction on insert overflow, no eviction by age.
type shapeCache struct {
	sync.Mutex

	capacity int
	items    map[string]*list.Element
	order    *list.List // front is most recent
}

type shapeCacheEntry struct {
	key   string
	value *LookupSourceFactory
}

func newShapeCache(capacity int) *shapeCache {
	return &shapeCache{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

func (c *shapeCache) Get(key string) (*LookupSourceFactory, bool) {
	c.Lock()
	defer c.Unlock()
	elem, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*shapeCacheEntry).value, true
}

func (c *shapeCache) Put(key string, value *LookupSourceFactory) {
	c.Lock()
	defer c.Unlock()
	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		elem.Value.(*shapeCacheEntry).value = value
		return
	}
	c.items[key] = c.order.PushFront(&shapeCacheEntry{key: key, value: value})
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*shapeCacheEntry).key)
	}
}

func (c *shapeCache) Len() int {
	c.Lock()
	defer c.Unlock()
	return c.order.Len()
}
