package memory

import (
	"context"
	"sync"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// MStorage потокобезопасное key/value хранилище в памяти. Значения
// держатся сериализованными в json, чтобы наружу всегда отдавалась
// копия, а не разделяемый указатель.
type MStorage struct {
	data map[string][]byte
	m    sync.RWMutex
}

func NewMemStorage() *MStorage {
	return &MStorage{
		data: make(map[string][]byte),
	}
}

func (m *MStorage) Len() int {
	m.m.RLock()
	defer m.m.RUnlock()

	return len(m.data)
}

func (m *MStorage) IsExist(key string) bool {
	m.m.RLock()
	defer m.m.RUnlock()

	_, ok := m.data[key]
	return ok
}

func (m *MStorage) Delete(key string) bool {
	m.m.Lock()
	defer m.m.Unlock()

	_, ok := m.data[key]
	delete(m.data, key)
	return ok
}

// SetOptions настройки записи.
type SetOptions struct {
	Overwrite bool
}

// WithOverwrite разрешает перезапись существующего ключа.
func WithOverwrite() func(*SetOptions) {
	return func(o *SetOptions) {
		o.Overwrite = true
	}
}

func Get[T any](_ context.Context, key string, m *MStorage) (*T, error) {
	m.m.RLock()
	defer m.m.RUnlock()

	val, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	var result T
	if err := json.Unmarshal(val, &result); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal json by key `%s`", key)
	}
	return &result, nil
}

// Set сохраняет пару ключ/значение. Без WithOverwrite ключ обязан быть
// уникальным, иначе вернется ErrDuplicateKey.
func Set[T any](_ context.Context, key string, val *T, m *MStorage, opts ...func(*SetOptions)) error {
	var options SetOptions
	for _, opt := range opts {
		opt(&options)
	}

	m.m.Lock()
	defer m.m.Unlock()

	if _, ok := m.data[key]; ok && !options.Overwrite {
		return ErrDuplicateKey
	}

	bytes, err := json.Marshal(val)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal json for object `%+v`", val)
	}
	m.data[key] = bytes
	return nil
}

func GetAll[T any](_ context.Context, m *MStorage) []T {
	m.m.RLock()
	defer m.m.RUnlock()

	var result = make([]T, 0, len(m.data))

	for _, bytes := range m.data {
		var val T
		if err := json.Unmarshal(bytes, &val); err != nil {
			logrus.WithError(err).Errorf("failed to unmarshal json for object `%+v`", val)
			continue
		}
		result = append(result, val)
	}
	return result
}
