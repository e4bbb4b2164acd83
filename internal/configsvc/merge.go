package configsvc

import (
	"bytes"
	"encoding/json"
	"errors"
	"math/big"
	"strings"
)

var errObjectMerge = errors.New("an object value cannot be merged; use replace")

// elements раскладывает JSON-значение на элементы множества:
// массив — по элементам, null — пусто, скаляр — один элемент.
func elements(raw json.RawMessage) ([]json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	switch raw[0] {
	case '[':
		var out []json.RawMessage
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, err
		}
		return out, nil
	case '{':
		return nil, errObjectMerge
	}
	return []json.RawMessage{raw}, nil
}

// canonical — ключ для сравнения элементов: одинаковые значения с разным
// форматированием считаются равными. Числа читаются как json.Number, чтобы
// большие целые не теряли точность.
func canonical(raw json.RawMessage) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", err
	}
	b, err := json.Marshal(normalize(v))
	return string(b), err
}

func normalize(v any) any {
	switch x := v.(type) {
	case json.Number:
		return numberKey(x)
	case []any:
		for i := range x {
			x[i] = normalize(x[i])
		}
	case map[string]any:
		for k := range x {
			x[k] = normalize(x[k])
		}
	}
	return v
}

// numberKey приводит число к точной десятичной записи: 2, 2.0 и 2e0 дают "2".
func numberKey(n json.Number) json.Number {
	r, ok := new(big.Rat).SetString(string(n))
	if !ok {
		return n
	}
	if r.IsInt() {
		return json.Number(r.Num().String())
	}
	// знаменатель десятичной дроби имеет вид 2^a * 5^b, точность — max(a, b)
	d := new(big.Int).Set(r.Denom())
	mod := new(big.Int)
	prec := 0
	for _, f := range []int64{2, 5} {
		k, q := 0, big.NewInt(f)
		for {
			quo, rem := new(big.Int).QuoRem(d, q, mod)
			if rem.Sign() != 0 {
				break
			}
			d, k = quo, k+1
		}
		prec = max(prec, k)
	}
	return json.Number(r.FloatString(prec))
}

// Union объединяет два значения как множества. Порядок: сначала прежние
// элементы, затем новые; повторы убираются.
func Union(current, incoming json.RawMessage) (json.RawMessage, error) {
	a, err := elements(current)
	if err != nil {
		return nil, err
	}
	b, err := elements(incoming)
	if err != nil {
		return nil, err
	}
	out := make([]json.RawMessage, 0, len(a)+len(b))
	seen := map[string]struct{}{}
	for _, e := range append(a, b...) {
		k, err := canonical(e)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, e)
	}
	return json.Marshal(out)
}

// Contains — есть ли needle среди значения: элемент массива, ключ объекта
// или подстрока строки.
func Contains(value json.RawMessage, needle string) bool {
	var v any
	if err := json.Unmarshal(value, &v); err != nil {
		return false
	}
	switch x := v.(type) {
	case []any:
		for _, e := range x {
			if s, ok := e.(string); ok && s == needle {
				return true
			}
		}
	case map[string]any:
		_, ok := x[needle]
		return ok
	case string:
		return strings.Contains(x, needle)
	}
	return false
}
