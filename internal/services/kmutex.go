package services

import "sync"

// keyedMutex взаимное исключение по строковому ключу. Сериализует
// конкурентные мутации одного агрегата (замок по id ссылки), не
// блокируя мутации разных агрегатов между собой.
type keyedMutex struct {
	locks sync.Map // map[string]*sync.Mutex
}

// Lock захватывает замок ключа и возвращает функцию освобождения.
func (k *keyedMutex) Lock(key string) func() {
	val, _ := k.locks.LoadOrStore(key, &sync.Mutex{})
	mu := val.(*sync.Mutex) //nolint:errcheck
	mu.Lock()
	return mu.Unlock
}
